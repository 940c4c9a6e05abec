package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"finance-ledger/internal/dto"
	apierrors "finance-ledger/internal/errors"
	"finance-ledger/internal/secrets"
	"finance-ledger/internal/services/service_mocks"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

type CredentialHandlerTestSuite struct {
	suite.Suite
	echo              *echo.Echo
	ctrl              *gomock.Controller
	credentialService *service_mocks.MockCredentialServiceInterface
	handler           *CredentialHandler
}

func TestCredentialHandlerSuite(t *testing.T) {
	suite.Run(t, new(CredentialHandlerTestSuite))
}

func (s *CredentialHandlerTestSuite) SetupTest() {
	s.echo = newTestEcho()
	s.ctrl = gomock.NewController(s.T())
	s.credentialService = service_mocks.NewMockCredentialServiceInterface(s.ctrl)
	s.handler = NewCredentialHandler(s.credentialService)
}

func (s *CredentialHandlerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *CredentialHandlerTestSuite) TestStoreCredential_NeverEchoesValue() {
	apiKey := gofakeit.Password(true, true, true, false, false, 40)

	s.credentialService.EXPECT().
		StoreCredential(gomock.Any(), secrets.CredentialGeminiAPIKey, apiKey).
		Return(nil)

	body, err := json.Marshal(dto.StoreCredentialRequest{Value: apiKey})
	s.Require().NoError(err)

	c, rec := newJSONContext(s.echo, http.MethodPut, "/", string(body), "type", "gemini_api_key")
	s.Require().NoError(s.handler.StoreCredential(c))

	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"type":"gemini_api_key","exists":true}`, rec.Body.String())
	s.NotContains(rec.Body.String(), apiKey)
}

func (s *CredentialHandlerTestSuite) TestStoreCredential_UnknownType() {
	c, rec := newJSONContext(s.echo, http.MethodPut, "/", `{"value":"abc"}`, "type", "aws_secret")

	s.Require().NoError(s.handler.StoreCredential(c))

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(string(apierrors.CredentialInvalidType), decodeErrorResponse(s.T(), rec).Error.Code)
}

func (s *CredentialHandlerTestSuite) TestStoreCredential_BlankValue() {
	c, _ := newJSONContext(s.echo, http.MethodPut, "/", `{"value":"  "}`, "type", "openai_api_key")

	s.Error(s.handler.StoreCredential(c))
}

func (s *CredentialHandlerTestSuite) TestCredentialExists() {
	s.credentialService.EXPECT().
		CredentialExists(gomock.Any(), secrets.CredentialOpenAIAPIKey).
		Return(false, nil)

	c, rec := newJSONContext(s.echo, http.MethodGet, "/", "", "type", "openai_api_key")
	s.Require().NoError(s.handler.CredentialExists(c))

	s.JSONEq(`{"type":"openai_api_key","exists":false}`, rec.Body.String())
}

func (s *CredentialHandlerTestSuite) TestListCredentials() {
	s.credentialService.EXPECT().ListCredentials(gomock.Any()).
		Return(map[secrets.CredentialType]bool{secrets.CredentialGeminiAPIKey: true}, nil)

	c, rec := newJSONContext(s.echo, http.MethodGet, "/api/v1/credentials", "")
	s.Require().NoError(s.handler.ListCredentials(c))

	var resp dto.ListCredentialsResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Len(resp.Credentials, len(secrets.AllCredentialTypes()))
	for _, status := range resp.Credentials {
		s.Equal(status.Type == "gemini_api_key", status.Exists, status.Type)
	}
}

func (s *CredentialHandlerTestSuite) TestDeleteCredential() {
	s.Run("stored", func() {
		s.credentialService.EXPECT().DeleteCredential(gomock.Any(), secrets.CredentialGeminiAPIKey).Return(nil)

		c, rec := newJSONContext(s.echo, http.MethodDelete, "/", "", "type", "gemini_api_key")
		s.Require().NoError(s.handler.DeleteCredential(c))

		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("absent", func() {
		s.credentialService.EXPECT().DeleteCredential(gomock.Any(), secrets.CredentialGeminiAPIKey).
			Return(apierrors.NotFound(apierrors.EntityCredential, secrets.CredentialGeminiAPIKey))

		c, rec := newJSONContext(s.echo, http.MethodDelete, "/", "", "type", "gemini_api_key")
		s.Require().NoError(s.handler.DeleteCredential(c))

		s.Equal(http.StatusNotFound, rec.Code)
		s.Equal(string(apierrors.CredentialNotFound), decodeErrorResponse(s.T(), rec).Error.Code)
	})
}
