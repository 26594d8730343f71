package entity

import (
	"time"

	"github.com/google/uuid"
)

// WorkflowState is the consultancy pipeline position of a session.
// Stored as text; transitions are a strict forward order ending at
// StateFinished.
type WorkflowState string

const (
	StateWaitingForInfo WorkflowState = "WAITING_FOR_INFO"
	StateStartResearch  WorkflowState = "START_RESEARCH"
	StateDecideFlow     WorkflowState = "DECIDE_FLOW"
	StateStartReport    WorkflowState = "START_REPORT"
	StateFinished       WorkflowState = "FINISHED"
)

// Message is one transcript entry. Immutable once appended.
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// ConsultSession is the aggregate for one end-to-end consultancy
// conversation. The workflow runner owns the value for the duration of
// one advance and persists after every mutation.
type ConsultSession struct {
	Id              uuid.UUID
	UserId          uuid.UUID
	ChatHistory     []Message
	CompanyInfo     *string
	ResearchResults []string
	ReportFinal     *string
	CurrentState    WorkflowState
	ResearchCounter int
	CreatedAt       time.Time
	UpdatedAt       *time.Time
	DeletedAt       *time.Time
	IsDeleted       bool
}

// NewConsultSession returns the zero-value session a browser tab starts
// from: empty sequences, counter zero, waiting for the company info.
func NewConsultSession(userId uuid.UUID) *ConsultSession {
	return &ConsultSession{
		Id:              uuid.New(),
		UserId:          userId,
		ChatHistory:     make([]Message, 0),
		ResearchResults: make([]string, 0),
		CurrentState:    StateWaitingForInfo,
		ResearchCounter: 0,
		CreatedAt:       time.Now(),
	}
}

// AppendMessage appends to the transcript. History only ever grows.
func (s *ConsultSession) AppendMessage(role, content string) {
	s.ChatHistory = append(s.ChatHistory, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().Unix(),
	})
}

// AppendResearch records one completed research call. The counter moves
// with the slice so len(ResearchResults) == ResearchCounter holds at
// every observation point.
func (s *ConsultSession) AppendResearch(result string) {
	s.ResearchResults = append(s.ResearchResults, result)
	s.ResearchCounter++
}

// CaptureCompanyInfo sets the company description exactly once.
func (s *ConsultSession) CaptureCompanyInfo(info string) {
	if s.CompanyInfo != nil {
		return
	}
	s.CompanyInfo = &info
}

// Finished reports whether the session reached its terminal state and
// became read-only.
func (s *ConsultSession) Finished() bool {
	return s.CurrentState == StateFinished
}
