package mapper

import (
	"encoding/json"
	"time"

	"ai-consultancy-be/internal/entity"
	"ai-consultancy-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) ToEntity(s *model.ConsultSession) (*entity.ConsultSession, error) {
	if s == nil {
		return nil, nil
	}

	history := make([]entity.Message, 0)
	if len(s.ChatHistory) > 0 {
		if err := json.Unmarshal(s.ChatHistory, &history); err != nil {
			return nil, err
		}
	}

	results := make([]string, 0)
	if len(s.ResearchResults) > 0 {
		if err := json.Unmarshal(s.ResearchResults, &results); err != nil {
			return nil, err
		}
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.ConsultSession{
		Id:              s.Id,
		UserId:          s.UserId,
		ChatHistory:     history,
		CompanyInfo:     s.CompanyInfo,
		ResearchResults: results,
		ReportFinal:     s.ReportFinal,
		CurrentState:    entity.WorkflowState(s.CurrentState),
		ResearchCounter: s.ResearchCounter,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       updatedAt,
		DeletedAt:       deletedAt,
		IsDeleted:       s.DeletedAt.Valid,
	}, nil
}

func (m *SessionMapper) ToModel(s *entity.ConsultSession) (*model.ConsultSession, error) {
	if s == nil {
		return nil, nil
	}

	history := s.ChatHistory
	if history == nil {
		history = make([]entity.Message, 0)
	}
	historyJson, err := json.Marshal(history)
	if err != nil {
		return nil, err
	}

	results := s.ResearchResults
	if results == nil {
		results = make([]string, 0)
	}
	resultsJson, err := json.Marshal(results)
	if err != nil {
		return nil, err
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.ConsultSession{
		Id:              s.Id,
		UserId:          s.UserId,
		ChatHistory:     datatypes.JSON(historyJson),
		CompanyInfo:     s.CompanyInfo,
		ResearchResults: datatypes.JSON(resultsJson),
		ReportFinal:     s.ReportFinal,
		CurrentState:    string(s.CurrentState),
		ResearchCounter: s.ResearchCounter,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       updatedAt,
		DeletedAt:       deletedAt,
	}, nil
}
