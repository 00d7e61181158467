package credential

import "context"

//go:generate mockgen -source=interface.go -destination=mock/repository_mock.go -package=mock

// CredentialRepository resolves exchange credentials by user.
type CredentialRepository interface {
	GetByUserID(ctx context.Context, userID string) (*Credential, error)
}
