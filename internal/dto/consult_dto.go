package dto

import "time"

type MessageResponse struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

type SessionResponse struct {
	Id              string            `json:"id"`
	UserId          string            `json:"user_id"`
	ChatHistory     []MessageResponse `json:"chat_history"`
	CompanyInfo     *string           `json:"company_info"`
	ResearchResults []string          `json:"research_results"`
	ReportFinal     *string           `json:"report_final"`
	CurrentState    string            `json:"current_state"`
	ResearchCounter int               `json:"research_counter"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

type SessionSummaryResponse struct {
	Id           string    `json:"id"`
	CurrentState string    `json:"current_state"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreateSessionResponse struct {
	Session SessionResponse `json:"session"`
}

type GetSessionResponse struct {
	Session SessionResponse `json:"session"`
}

type GetAllSessionsResponse struct {
	Sessions []SessionSummaryResponse `json:"sessions"`
}

type SendChatRequest struct {
	SessionId string `json:"session_id" validate:"required,uuid"`
	Message   string `json:"message" validate:"required"`
}

type SendChatResponse struct {
	Session SessionResponse `json:"session"`
}
