package contract

import (
	"context"

	"ai-consultancy-be/internal/entity"
	"ai-consultancy-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ConsultSessionRepository interface {
	Create(ctx context.Context, session *entity.ConsultSession) error
	// Update persists the mutable workflow fields of the session.
	// The primary key is never part of the update payload.
	Update(ctx context.Context, session *entity.ConsultSession) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ConsultSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConsultSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
