package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-consultancy-be/internal/dto"
	"ai-consultancy-be/internal/entity"
	"ai-consultancy-be/internal/mapper"
	"ai-consultancy-be/internal/pkg/apperror"
	"ai-consultancy-be/internal/pkg/logger"
	"ai-consultancy-be/internal/repository/specification"
	"ai-consultancy-be/internal/repository/unitofwork"
	"ai-consultancy-be/pkg/workflow"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// advanceGuardTTL bounds how long a session stays marked busy if a
// process dies mid-advance.
const advanceGuardTTL = 5 * time.Minute

// SessionChangedMessage is the intra-process payload published after
// every persist. Consumers re-read the session by id.
type SessionChangedMessage struct {
	SessionId uuid.UUID `json:"session_id"`
	UserId    uuid.UUID `json:"user_id"`
}

type IConsultService interface {
	CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error)
	GetSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.GetSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) (*dto.GetAllSessionsResponse, error)
	SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
}

type consultService struct {
	uowFactory       unitofwork.RepositoryFactory
	runner           *workflow.Runner
	publisherService IPublisherService
	sessionMapper    *mapper.SessionMapper
	// advanceGuard holds the ids of sessions with an advance in flight.
	// A second chat for the same session is rejected instead of queued.
	advanceGuard *gocache.Cache
	logger       logger.ILogger
}

func NewConsultService(
	uowFactory unitofwork.RepositoryFactory,
	runner *workflow.Runner,
	publisherService IPublisherService,
	log logger.ILogger,
) IConsultService {
	return &consultService{
		uowFactory:       uowFactory,
		runner:           runner,
		publisherService: publisherService,
		sessionMapper:    mapper.NewSessionMapper(),
		advanceGuard:     gocache.New(advanceGuardTTL, 10*time.Minute),
		logger:           log,
	}
}

func (c *consultService) CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	session := entity.NewConsultSession(userId)
	if err := uow.ConsultSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	c.notifyChanged(ctx, session)

	return &dto.CreateSessionResponse{
		Session: c.sessionMapper.ToResponse(session),
	}, nil
}

func (c *consultService) GetSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.GetSessionResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ConsultSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.New(apperror.KindNotFound, "session not found")
	}

	return &dto.GetSessionResponse{
		Session: c.sessionMapper.ToResponse(session),
	}, nil
}

func (c *consultService) GetAllSessions(ctx context.Context, userId uuid.UUID) (*dto.GetAllSessionsResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ConsultSessionRepository().FindAll(ctx,
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.SessionSummaryResponse, 0, len(sessions))
	for _, session := range sessions {
		summaries = append(summaries, c.sessionMapper.ToSummaryResponse(session))
	}

	return &dto.GetAllSessionsResponse{Sessions: summaries}, nil
}

func (c *consultService) SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	sessionId, err := uuid.Parse(req.SessionId)
	if err != nil {
		return nil, apperror.New(apperror.KindValidation, "session_id must be a valid uuid")
	}

	// One advance per session at a time, process-wide.
	if err := c.advanceGuard.Add(sessionId.String(), true, advanceGuardTTL); err != nil {
		return nil, apperror.New(apperror.KindConflict, "session is already processing a message")
	}
	defer c.advanceGuard.Delete(sessionId.String())

	uow := c.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ConsultSessionRepository()

	session, err := repo.FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.New(apperror.KindNotFound, "session not found")
	}

	persist := func(ctx context.Context, s *entity.ConsultSession) error {
		if err := repo.Update(ctx, s); err != nil {
			return err
		}
		c.notifyChanged(ctx, s)
		return nil
	}

	if err := c.runner.Advance(ctx, session, req.Message, persist); err != nil {
		return nil, err
	}

	return &dto.SendChatResponse{
		Session: c.sessionMapper.ToResponse(session),
	}, nil
}

// notifyChanged publishes the session id on the intra-process bus. The
// feed consumer re-reads and fans out; a publish failure never fails
// the request.
func (c *consultService) notifyChanged(ctx context.Context, session *entity.ConsultSession) {
	payload, err := json.Marshal(SessionChangedMessage{
		SessionId: session.Id,
		UserId:    session.UserId,
	})
	if err != nil {
		return
	}
	if err := c.publisherService.Publish(ctx, payload); err != nil {
		c.logger.Warn("ConsultService", "Failed to publish session change", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
	}
}
