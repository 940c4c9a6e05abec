package handlers

import (
	"net/http"

	"finance-ledger/internal/dto"
	apierrors "finance-ledger/internal/errors"
	"finance-ledger/internal/secrets"
	"finance-ledger/internal/services"

	"github.com/labstack/echo/v4"
)

// CredentialHandler manages the suggestion provider's API keys. Stored values
// are write-only: responses only ever say whether a credential exists.
type CredentialHandler struct {
	credentialService services.CredentialServiceInterface
}

func NewCredentialHandler(credentialService services.CredentialServiceInterface) *CredentialHandler {
	return &CredentialHandler{credentialService: credentialService}
}

func sendInvalidCredentialType(c echo.Context) error {
	return SendError(c, apierrors.CredentialInvalidType,
		apierrors.WithDetails("type must be one of the supported credential types"))
}

// ListCredentials reports which credential types are configured
//
// Method: GET /api/v1/credentials
func (h *CredentialHandler) ListCredentials(c echo.Context) error {
	status, err := h.credentialService.ListCredentials(c.Request().Context())
	if err != nil {
		return SendLedgerError(c, err)
	}

	resp := dto.ListCredentialsResponse{Credentials: []dto.CredentialStatusResponse{}}
	for _, credential := range secrets.AllCredentialTypes() {
		resp.Credentials = append(resp.Credentials, dto.CredentialStatusResponse{
			Type:   credential.String(),
			Exists: status[credential],
		})
	}

	return c.JSON(http.StatusOK, resp)
}

// StoreCredential saves or replaces a credential
//
// Method: PUT /api/v1/credentials/:type
func (h *CredentialHandler) StoreCredential(c echo.Context) error {
	credential, err := secrets.ParseCredentialType(c.Param("type"))
	if err != nil {
		return sendInvalidCredentialType(c)
	}

	var req dto.StoreCredentialRequest
	if err := c.Bind(&req); err != nil {
		return sendInvalidBody(c)
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	if err := h.credentialService.StoreCredential(c.Request().Context(), credential, req.Value); err != nil {
		return SendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.CredentialStatusResponse{Type: credential.String(), Exists: true})
}

// CredentialExists reports whether a credential is configured
//
// Method: GET /api/v1/credentials/:type
func (h *CredentialHandler) CredentialExists(c echo.Context) error {
	credential, err := secrets.ParseCredentialType(c.Param("type"))
	if err != nil {
		return sendInvalidCredentialType(c)
	}

	exists, err := h.credentialService.CredentialExists(c.Request().Context(), credential)
	if err != nil {
		return SendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.CredentialStatusResponse{Type: credential.String(), Exists: exists})
}

// DeleteCredential removes a credential; 404 when none is stored
//
// Method: DELETE /api/v1/credentials/:type
func (h *CredentialHandler) DeleteCredential(c echo.Context) error {
	credential, err := secrets.ParseCredentialType(c.Param("type"))
	if err != nil {
		return sendInvalidCredentialType(c)
	}

	if err := h.credentialService.DeleteCredential(c.Request().Context(), credential); err != nil {
		return SendLedgerError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
