package implementation

import (
	"context"
	"errors"

	"ai-consultancy-be/internal/entity"
	"ai-consultancy-be/internal/mapper"
	"ai-consultancy-be/internal/model"
	"ai-consultancy-be/internal/pkg/apperror"
	"ai-consultancy-be/internal/repository/contract"
	"ai-consultancy-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConsultSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewConsultSessionRepository(db *gorm.DB) contract.ConsultSessionRepository {
	return &ConsultSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *ConsultSessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ConsultSessionRepositoryImpl) Create(ctx context.Context, session *entity.ConsultSession) error {
	m, err := r.mapper.ToModel(session)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateWriteError(err)
	}
	mapped, err := r.mapper.ToEntity(m)
	if err != nil {
		return err
	}
	*session = *mapped
	return nil
}

// Update writes the workflow fields column by column. The id is only
// used in the WHERE clause, never as part of the payload.
func (r *ConsultSessionRepositoryImpl) Update(ctx context.Context, session *entity.ConsultSession) error {
	m, err := r.mapper.ToModel(session)
	if err != nil {
		return err
	}

	fields := map[string]interface{}{
		"chat_history":     m.ChatHistory,
		"company_info":     m.CompanyInfo,
		"research_results": m.ResearchResults,
		"report_final":     m.ReportFinal,
		"current_state":    m.CurrentState,
		"research_counter": m.ResearchCounter,
	}

	tx := r.db.WithContext(ctx).
		Model(&model.ConsultSession{}).
		Where("id = ?", session.Id).
		Updates(fields)
	if tx.Error != nil {
		return translateWriteError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return apperror.New(apperror.KindNotFound, "consult session not found")
	}
	return nil
}

func (r *ConsultSessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ConsultSession, error) {
	var m model.ConsultSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}

func (r *ConsultSessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConsultSession, error) {
	var models []*model.ConsultSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ConsultSession, len(models))
	for i, m := range models {
		e, err := r.mapper.ToEntity(m)
		if err != nil {
			return nil, err
		}
		entities[i] = e
	}
	return entities, nil
}

func (r *ConsultSessionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ConsultSession{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ConsultSessionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ConsultSession{}).Error
}

// translateWriteError distinguishes constraint violations from generic
// database failures. Relies on gorm's TranslateError being enabled in
// pkg/database.
func translateWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Wrap(apperror.KindConstraint, "duplicate session identity", err)
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return apperror.Wrap(apperror.KindConstraint, "session references an identity not permitted by the store", err)
	}
	return err
}
