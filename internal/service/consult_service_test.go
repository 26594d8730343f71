package service

import (
	"context"
	"sync"
	"testing"

	"ai-consultancy-be/internal/dto"
	"ai-consultancy-be/internal/entity"
	"ai-consultancy-be/internal/pkg/apperror"
	"ai-consultancy-be/internal/pkg/logger"
	"ai-consultancy-be/internal/repository/contract"
	"ai-consultancy-be/internal/repository/specification"
	"ai-consultancy-be/internal/repository/unitofwork"
	"ai-consultancy-be/pkg/llm"
	"ai-consultancy-be/pkg/workflow"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSessionRepository keeps sessions in memory and understands the
// ByID and OwnedBy specifications.
type fakeSessionRepository struct {
	mu        sync.Mutex
	sessions  map[uuid.UUID]*entity.ConsultSession
	createErr error
	updateErr error
	updates   int
}

func newFakeSessionRepository() *fakeSessionRepository {
	return &fakeSessionRepository{sessions: make(map[uuid.UUID]*entity.ConsultSession)}
}

func (r *fakeSessionRepository) Create(ctx context.Context, session *entity.ConsultSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	copy := *session
	r.sessions[session.Id] = &copy
	return nil
}

func (r *fakeSessionRepository) Update(ctx context.Context, session *entity.ConsultSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.sessions[session.Id]; !ok {
		return apperror.New(apperror.KindNotFound, "session not found")
	}
	copy := *session
	r.sessions[session.Id] = &copy
	r.updates++
	return nil
}

func (r *fakeSessionRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ConsultSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if matches(session, specs) {
			copy := *session
			return &copy, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConsultSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*entity.ConsultSession, 0)
	for _, session := range r.sessions {
		if matches(session, specs) {
			copy := *session
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (r *fakeSessionRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *fakeSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func matches(session *entity.ConsultSession, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if session.Id != s.ID {
				return false
			}
		case specification.OwnedBy:
			if session.UserId != s.UserID {
				return false
			}
		}
	}
	return true
}

type fakeUnitOfWork struct {
	repo contract.ConsultSessionRepository
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }
func (u *fakeUnitOfWork) ConsultSessionRepository() contract.ConsultSessionRepository {
	return u.repo
}

type fakeFactory struct {
	repo contract.ConsultSessionRepository
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{repo: f.repo}
}

type fakePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.payloads)
}

// gatedProvider answers with canned responses and can hold calls open
// until released, to exercise the in-flight guard.
type gatedProvider struct {
	responses []string
	mu        sync.Mutex
	calls     int
	gate      chan struct{}
	started   chan struct{}
	startOnce sync.Once
}

func (p *gatedProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	if p.started != nil {
		p.startOnce.Do(func() { close(p.started) })
	}
	if p.gate != nil {
		<-p.gate
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	response := p.responses[p.calls%len(p.responses)]
	p.calls++
	return response, nil
}

func (p *gatedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

func newTestService(repo contract.ConsultSessionRepository, provider llm.LLMProvider, publisher IPublisherService) IConsultService {
	log := logger.NewNop()
	runner := workflow.NewRunner(provider, log)
	return NewConsultService(&fakeFactory{repo: repo}, runner, publisher, log)
}

func TestCreateAndGetSession(t *testing.T) {
	repo := newFakeSessionRepository()
	svc := newTestService(repo, &gatedProvider{responses: []string{"x"}}, &fakePublisher{})
	userId := uuid.New()

	created, err := svc.CreateSession(context.Background(), userId)
	require.NoError(t, err)
	assert.Equal(t, string(entity.StateWaitingForInfo), created.Session.CurrentState)
	assert.Empty(t, created.Session.ChatHistory)

	got, err := svc.GetSession(context.Background(), userId, uuid.MustParse(created.Session.Id))
	require.NoError(t, err)
	assert.Equal(t, created.Session.Id, got.Session.Id)
}

func TestGetSessionScopedToOwner(t *testing.T) {
	repo := newFakeSessionRepository()
	svc := newTestService(repo, &gatedProvider{responses: []string{"x"}}, &fakePublisher{})

	created, err := svc.CreateSession(context.Background(), uuid.New())
	require.NoError(t, err)

	_, err = svc.GetSession(context.Background(), uuid.New(), uuid.MustParse(created.Session.Id))
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestSendChatRunsPipelineToCompletion(t *testing.T) {
	repo := newFakeSessionRepository()
	publisher := &fakePublisher{}
	provider := &gatedProvider{responses: []string{"finding one", "finding two", "final report"}}
	svc := newTestService(repo, provider, publisher)
	userId := uuid.New()

	created, err := svc.CreateSession(context.Background(), userId)
	require.NoError(t, err)

	resp, err := svc.SendChat(context.Background(), userId, &dto.SendChatRequest{
		SessionId: created.Session.Id,
		Message:   "We are a logistics startup",
	})
	require.NoError(t, err)

	assert.Equal(t, string(entity.StateFinished), resp.Session.CurrentState)
	require.NotNil(t, resp.Session.ReportFinal)
	assert.Equal(t, "final report", *resp.Session.ReportFinal)
	assert.Equal(t, 2, resp.Session.ResearchCounter)
	assert.Len(t, resp.Session.ResearchResults, 2)

	// One publish for the create, then one per persisted step.
	assert.GreaterOrEqual(t, publisher.count(), 6)

	// The durable copy matches what the caller got back.
	stored, err := svc.GetSession(context.Background(), userId, uuid.MustParse(created.Session.Id))
	require.NoError(t, err)
	assert.Equal(t, resp.Session.CurrentState, stored.Session.CurrentState)
	assert.Len(t, stored.Session.ChatHistory, 4)
}

func TestSendChatRejectsConcurrentAdvance(t *testing.T) {
	repo := newFakeSessionRepository()
	gate := make(chan struct{})
	started := make(chan struct{})
	provider := &gatedProvider{
		responses: []string{"finding", "finding", "report"},
		gate:      gate,
		started:   started,
	}
	svc := newTestService(repo, provider, &fakePublisher{})
	userId := uuid.New()

	created, err := svc.CreateSession(context.Background(), userId)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.SendChat(context.Background(), userId, &dto.SendChatRequest{
			SessionId: created.Session.Id,
			Message:   "first message",
		})
		done <- err
	}()

	// The first advance is holding the guard while it waits on the
	// provider gate. A second chat for the same session must bounce.
	<-started
	_, err = svc.SendChat(context.Background(), userId, &dto.SendChatRequest{
		SessionId: created.Session.Id,
		Message:   "second message",
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	close(gate)
	require.NoError(t, <-done)
}

func TestSendChatUnknownSession(t *testing.T) {
	repo := newFakeSessionRepository()
	svc := newTestService(repo, &gatedProvider{responses: []string{"x"}}, &fakePublisher{})

	_, err := svc.SendChat(context.Background(), uuid.New(), &dto.SendChatRequest{
		SessionId: uuid.New().String(),
		Message:   "hello",
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestSendChatInvalidSessionId(t *testing.T) {
	repo := newFakeSessionRepository()
	svc := newTestService(repo, &gatedProvider{responses: []string{"x"}}, &fakePublisher{})

	_, err := svc.SendChat(context.Background(), uuid.New(), &dto.SendChatRequest{
		SessionId: "not-a-uuid",
		Message:   "hello",
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestCreateSessionSurfacesConstraintViolation(t *testing.T) {
	repo := newFakeSessionRepository()
	repo.createErr = apperror.New(apperror.KindConstraint, "duplicate session identity")
	svc := newTestService(repo, &gatedProvider{responses: []string{"x"}}, &fakePublisher{})

	_, err := svc.CreateSession(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperror.KindConstraint, apperror.KindOf(err))
}
