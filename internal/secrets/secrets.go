// Package secrets stores API credentials used by the suggestion providers.
// Stored values are never returned over the API; callers inside the process
// read them through Store.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// CredentialType names a credential slot
type CredentialType string

const (
	CredentialGeminiAPIKey CredentialType = "gemini_api_key"
	CredentialOpenAIAPIKey CredentialType = "openai_api_key"
)

var (
	ErrNotFound              = errors.New("credential not found")
	ErrUnknownCredentialType = errors.New("unknown credential type")
	ErrEmptyValue            = errors.New("credential value is required")
)

// Store is the narrow credential storage contract
type Store interface {
	Store(ctx context.Context, credential CredentialType, value string) error
	Get(ctx context.Context, credential CredentialType) (string, error)
	Delete(ctx context.Context, credential CredentialType) error
	Exists(ctx context.Context, credential CredentialType) (bool, error)
}

// AllCredentialTypes returns every known credential type
func AllCredentialTypes() []CredentialType {
	return []CredentialType{CredentialGeminiAPIKey, CredentialOpenAIAPIKey}
}

// Valid reports whether c is a known credential type
func (c CredentialType) Valid() bool {
	for _, known := range AllCredentialTypes() {
		if c == known {
			return true
		}
	}
	return false
}

func (c CredentialType) String() string {
	return string(c)
}

// ParseCredentialType accepts the canonical name in any case
func ParseCredentialType(s string) (CredentialType, error) {
	c := CredentialType(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCredentialType, s)
	}
	return c, nil
}

func checkArgs(credential CredentialType) error {
	if !credential.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCredentialType, string(credential))
	}
	return nil
}
