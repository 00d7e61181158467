package bootstrap

import (
	credentialInfra "github.com/Akhileshait/tradenet/internal/infrastructure/postgresql/credential"
	orderInfra "github.com/Akhileshait/tradenet/internal/infrastructure/postgresql/order"
)

// Repository holds the command store repositories.
type Repository struct {
	OrderRepository      orderInfra.OrderRepository
	CredentialRepository credentialInfra.CredentialRepository
}

// registerRepository registers the repository.
func (b *Bootstrap) registerRepository() {
	if b.PostgreSQL == nil {
		return
	}
	b.Repository.OrderRepository = orderInfra.NewRepository(b.PostgreSQL, b.Logger)
	b.Repository.CredentialRepository = credentialInfra.NewRepository(b.PostgreSQL, b.Logger)
}
