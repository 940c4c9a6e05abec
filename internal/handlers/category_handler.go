package handlers

import (
	"net/http"

	"finance-ledger/internal/dto"
	"finance-ledger/internal/models"
	"finance-ledger/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CategoryHandler handles category HTTP requests
type CategoryHandler struct {
	categoryService services.CategoryServiceInterface
}

func NewCategoryHandler(categoryService services.CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// ListCategories returns every category ordered by name
//
// Method: GET /api/v1/categories
func (h *CategoryHandler) ListCategories(c echo.Context) error {
	categories, err := h.categoryService.GetAllCategories(c.Request().Context())
	if err != nil {
		return SendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.ListCategoriesResponse{
		Categories: dto.NewCategoryResponses(categories),
		Total:      len(categories),
	})
}

// GetCategory returns one category
//
// Method: GET /api/v1/categories/:id
func (h *CategoryHandler) GetCategory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return sendInvalidID(c, "id")
	}

	category, err := h.categoryService.GetCategoryByID(c.Request().Context(), id)
	if err != nil {
		return SendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewCategoryResponse(category))
}

// CreateCategory adds a category
//
// Method: POST /api/v1/categories
//
// Error Responses:
//   - 400: Missing name or unknown spendingType
//   - 409: A category with the same name exists
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req dto.CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return sendInvalidBody(c)
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	category := req.ToModel()
	if err := h.categoryService.CreateCategory(c.Request().Context(), category); err != nil {
		return SendLedgerError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.NewCategoryResponse(category))
}

// CreateCategories adds several categories in one transaction
//
// Method: POST /api/v1/categories/batch
func (h *CategoryHandler) CreateCategories(c echo.Context) error {
	var req dto.CreateCategoriesRequest
	if err := c.Bind(&req); err != nil {
		return sendInvalidBody(c)
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	categories := make([]*models.Category, len(req.Categories))
	for i, item := range req.Categories {
		categories[i] = item.ToModel()
	}

	if err := h.categoryService.CreateCategories(c.Request().Context(), categories); err != nil {
		return SendLedgerError(c, err)
	}

	responses := make([]dto.CategoryResponse, len(categories))
	for i, category := range categories {
		responses[i] = dto.NewCategoryResponse(category)
	}

	return c.JSON(http.StatusCreated, dto.ListCategoriesResponse{
		Categories: responses,
		Total:      len(responses),
	})
}

// UpdateCategory applies a partial update
//
// Method: PATCH /api/v1/categories/:id
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return sendInvalidID(c, "id")
	}

	var update models.CategoryUpdate
	if err := c.Bind(&update); err != nil {
		return sendInvalidBody(c)
	}

	category, err := h.categoryService.UpdateCategory(c.Request().Context(), id, update)
	if err != nil {
		return SendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewCategoryResponse(category))
}

// DeleteCategory removes a category and its rules. It is refused with 409
// while any transaction still references the category.
//
// Method: DELETE /api/v1/categories/:id
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return sendInvalidID(c, "id")
	}

	if err := h.categoryService.DeleteCategory(c.Request().Context(), id); err != nil {
		return SendLedgerError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
