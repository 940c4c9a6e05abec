package services

import (
	"context"
	"errors"

	apierrors "finance-ledger/internal/errors"
	"finance-ledger/internal/secrets"
)

const (
	CredentialActionStored  = "stored"
	CredentialActionDeleted = "deleted"
)

type CredentialService struct {
	store       secrets.Store
	auditLogger AuditLoggerInterface
	metrics     MetricsRecorderInterface
}

func NewCredentialService(store secrets.Store, auditLogger AuditLoggerInterface, metrics MetricsRecorderInterface) CredentialServiceInterface {
	return &CredentialService{
		store:       store,
		auditLogger: auditLogger,
		metrics:     metrics,
	}
}

func (s *CredentialService) StoreCredential(ctx context.Context, credential secrets.CredentialType, value string) error {
	if err := s.store.Store(ctx, credential, value); err != nil {
		return translateSecretsError(credential, err)
	}

	s.recordChange(ctx, credential, CredentialActionStored)
	return nil
}

func (s *CredentialService) DeleteCredential(ctx context.Context, credential secrets.CredentialType) error {
	if err := s.store.Delete(ctx, credential); err != nil {
		return translateSecretsError(credential, err)
	}

	s.recordChange(ctx, credential, CredentialActionDeleted)
	return nil
}

func (s *CredentialService) CredentialExists(ctx context.Context, credential secrets.CredentialType) (bool, error) {
	exists, err := s.store.Exists(ctx, credential)
	if err != nil {
		return false, translateSecretsError(credential, err)
	}
	return exists, nil
}

// ListCredentials reports which known credential types have a stored value
func (s *CredentialService) ListCredentials(ctx context.Context) (map[secrets.CredentialType]bool, error) {
	status := make(map[secrets.CredentialType]bool)
	for _, credential := range secrets.AllCredentialTypes() {
		exists, err := s.CredentialExists(ctx, credential)
		if err != nil {
			return nil, err
		}
		status[credential] = exists
	}
	return status, nil
}

func (s *CredentialService) recordChange(ctx context.Context, credential secrets.CredentialType, action string) {
	s.auditLogger.LogCredentialChanged(ctx, credential, action)
	s.metrics.IncrementCounter("credential.changed", map[string]string{"action": action})
}

func translateSecretsError(credential secrets.CredentialType, err error) error {
	switch {
	case errors.Is(err, secrets.ErrNotFound):
		return apierrors.NotFound(apierrors.EntityCredential, credential)
	case errors.Is(err, secrets.ErrUnknownCredentialType):
		return apierrors.InvalidInput(apierrors.CredentialInvalidType, "unknown credential type "+string(credential), err)
	case errors.Is(err, secrets.ErrEmptyValue):
		return apierrors.InvalidInput(apierrors.ValidationRequiredField, "credential value is required", err)
	default:
		return apierrors.InternalStorage("access credential store", err)
	}
}
