package bootstrap

import (
	orderDomain "github.com/Akhileshait/tradenet/internal/domain/order"
	executionUc "github.com/Akhileshait/tradenet/internal/usecase/execution"
	intakeUc "github.com/Akhileshait/tradenet/internal/usecase/intake"
	routerUc "github.com/Akhileshait/tradenet/internal/usecase/router"
)

// Usecase holds the order pipeline usecases.
type Usecase struct {
	IntakeUsecase    orderDomain.IntakeUsecase
	ExecutionUsecase orderDomain.ExecutionUsecase
	RouterUsecase    orderDomain.RouterUsecase
}

// registerUsecase registers the usecase.
func (b *Bootstrap) registerUsecase() {
	if b.Repository.OrderRepository != nil && b.Bus != nil {
		b.Usecase.IntakeUsecase = intakeUc.NewUsecase(b.Repository.OrderRepository, b.Bus, b.Logger)
	}
	if b.Repository.OrderRepository != nil && b.Repository.CredentialRepository != nil &&
		b.Exchange != nil && b.Locker != nil && b.Bus != nil && b.DBTx != nil {
		b.Usecase.ExecutionUsecase = executionUc.NewUsecase(
			b.Repository.OrderRepository,
			b.Repository.CredentialRepository,
			b.Exchange,
			b.Locker,
			b.Bus,
			b.DBTx,
			b.Logger,
		)
	}
	b.Usecase.RouterUsecase = routerUc.NewUsecase(b.Registry, b.Logger)
}
