package mapper

import (
	"time"

	"ai-consultancy-be/internal/dto"
	"ai-consultancy-be/internal/entity"
)

func (m *SessionMapper) ToResponse(s *entity.ConsultSession) dto.SessionResponse {
	messages := make([]dto.MessageResponse, 0, len(s.ChatHistory))
	for _, msg := range s.ChatHistory {
		messages = append(messages, dto.MessageResponse{
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		})
	}

	results := s.ResearchResults
	if results == nil {
		results = make([]string, 0)
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return dto.SessionResponse{
		Id:              s.Id.String(),
		UserId:          s.UserId.String(),
		ChatHistory:     messages,
		CompanyInfo:     s.CompanyInfo,
		ResearchResults: results,
		ReportFinal:     s.ReportFinal,
		CurrentState:    string(s.CurrentState),
		ResearchCounter: s.ResearchCounter,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       updatedAt,
	}
}

func (m *SessionMapper) ToSummaryResponse(s *entity.ConsultSession) dto.SessionSummaryResponse {
	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return dto.SessionSummaryResponse{
		Id:           s.Id.String(),
		CurrentState: string(s.CurrentState),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}
