package handlers

import (
	"net/http"

	"finance-ledger/internal/dto"
	"finance-ledger/internal/models"
	"finance-ledger/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RuleHandler handles categorization rule HTTP requests, including dry-run
// matching and re-running the rules over the review queue
type RuleHandler struct {
	ruleService           services.CategorizationRuleServiceInterface
	categorizationService services.CategorizationServiceInterface
}

func NewRuleHandler(
	ruleService services.CategorizationRuleServiceInterface,
	categorizationService services.CategorizationServiceInterface,
) *RuleHandler {
	return &RuleHandler{
		ruleService:           ruleService,
		categorizationService: categorizationService,
	}
}

// ListRules returns every rule in evaluation order
//
// Method: GET /api/v1/rules
func (h *RuleHandler) ListRules(c echo.Context) error {
	rules, err := h.ruleService.GetAllRules(c.Request().Context())
	if err != nil {
		return SendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.ListRulesResponse{
		Rules: dto.NewRuleResponses(rules),
		Total: len(rules),
	})
}

// GetRule returns one rule
//
// Method: GET /api/v1/rules/:id
func (h *RuleHandler) GetRule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return sendInvalidID(c, "id")
	}

	rule, err := h.ruleService.GetRuleByID(c.Request().Context(), id)
	if err != nil {
		return SendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewRuleResponse(rule))
}

// CreateRule adds a rule. Regex patterns must compile.
//
// Method: POST /api/v1/rules
//
// Error Responses:
//   - 400: Empty or invalid pattern
//   - 404: categoryId does not exist
func (h *RuleHandler) CreateRule(c echo.Context) error {
	var req dto.CreateRuleRequest
	if err := c.Bind(&req); err != nil {
		return sendInvalidBody(c)
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	rule := req.ToModel()
	if err := h.ruleService.CreateRule(c.Request().Context(), rule); err != nil {
		return SendLedgerError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.NewRuleResponse(rule))
}

// UpdateRule applies a partial update
//
// Method: PATCH /api/v1/rules/:id
func (h *RuleHandler) UpdateRule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return sendInvalidID(c, "id")
	}

	var update models.CategorizationRuleUpdate
	if err := c.Bind(&update); err != nil {
		return sendInvalidBody(c)
	}

	rule, err := h.ruleService.UpdateRule(c.Request().Context(), id, update)
	if err != nil {
		return SendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewRuleResponse(rule))
}

// DeleteRule removes a rule
//
// Method: DELETE /api/v1/rules/:id
func (h *RuleHandler) DeleteRule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return sendInvalidID(c, "id")
	}

	if err := h.ruleService.DeleteRule(c.Request().Context(), id); err != nil {
		return SendLedgerError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ApplyRules reports which category the enabled rules assign to a
// description without storing anything
//
// Method: POST /api/v1/rules/apply
func (h *RuleHandler) ApplyRules(c echo.Context) error {
	var req dto.ApplyRulesRequest
	if err := c.Bind(&req); err != nil {
		return sendInvalidBody(c)
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	categoryID, err := h.categorizationService.ApplyCategorizationRules(c.Request().Context(), req.Description)
	if err != nil {
		return SendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.ApplyRulesResponse{
		CategoryID: categoryID,
		Matched:    categoryID != nil,
	})
}

// Recategorize re-runs the enabled rules over the review queue
//
// Method: POST /api/v1/rules/recategorize
func (h *RuleHandler) Recategorize(c echo.Context) error {
	categorized, err := h.categorizationService.RecategorizeUncategorized(c.Request().Context())
	if err != nil {
		return SendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.RecategorizeResponse{Categorized: categorized})
}
