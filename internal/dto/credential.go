package dto

// StoreCredentialRequest is the body of PUT /credentials/:type. The value is
// write-only; no response ever carries it.
type StoreCredentialRequest struct {
	Value string `json:"value" validate:"required,not_blank,max=4096"`
}

type CredentialStatusResponse struct {
	Type   string `json:"type"`
	Exists bool   `json:"exists"`
}

type ListCredentialsResponse struct {
	Credentials []CredentialStatusResponse `json:"credentials"`
}
