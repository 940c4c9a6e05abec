package validation

import (
	"reflect"
	"strings"
	"sync"

	"finance-ledger/internal/models"
	"finance-ledger/internal/secrets"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator with the ledger's custom rules
type Validator struct {
	validate *validator.Validate
}

// GetValidate returns the underlying validator.Validate instance for use with Echo
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

var (
	instance *Validator
	once     sync.Once
)

// GetValidator returns the shared validator instance
func GetValidator() *Validator {
	once.Do(func() {
		instance = NewValidator()
	})
	return instance
}

// NewValidator creates a new validator instance with custom rules and configuration
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("spending_type", validateSpendingType)
	_ = v.RegisterValidation("credential_type", validateCredentialType)
	_ = v.RegisterValidation("rule_pattern", validateRulePattern)
	_ = v.RegisterValidation("not_blank", validateNotBlank)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Struct validates a struct against its validate tags
func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}

// validateSpendingType accepts the four spending classifications; empty is
// left to omitempty/required
func validateSpendingType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.IsValidSpendingType(value)
}

func validateCredentialType(fl validator.FieldLevel) bool {
	_, err := secrets.ParseCredentialType(fl.Field().String())
	return err == nil
}

// validateRulePattern checks that a regex rule compiles. It reads the sibling
// IsRegex field; literal patterns only need to be non-blank.
func validateRulePattern(fl validator.FieldLevel) bool {
	pattern := fl.Field().String()
	if strings.TrimSpace(pattern) == "" {
		return false
	}

	parent := fl.Parent()
	if parent.Kind() == reflect.Ptr {
		parent = parent.Elem()
	}
	isRegex := parent.FieldByName("IsRegex")
	if !isRegex.IsValid() || isRegex.Kind() != reflect.Bool || !isRegex.Bool() {
		return true
	}

	_, err := models.CompileRulePattern(pattern)
	return err == nil
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
