package unitofwork

import (
	"context"

	"ai-consultancy-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ConsultSessionRepository() contract.ConsultSessionRepository
}
