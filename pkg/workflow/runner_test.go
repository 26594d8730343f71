package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-consultancy-be/internal/entity"
	"ai-consultancy-be/internal/pkg/apperror"
	"ai-consultancy-be/internal/pkg/logger"
	"ai-consultancy-be/pkg/llm"

	"github.com/google/uuid"
)

// scriptedProvider returns canned responses in order, or fails at a
// chosen call index.
type scriptedProvider struct {
	responses []string
	failAt    int // 1-based call index that fails; 0 means never
	calls     int
	prompts   []string
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	p.calls++
	p.prompts = append(p.prompts, history[len(history)-1].Content)
	if p.failAt > 0 && p.calls == p.failAt {
		return "", apperror.Wrap(apperror.KindAgent, "model unavailable", errors.New("status 503"))
	}
	idx := p.calls - 1
	if idx >= len(p.responses) {
		return "canned response", nil
	}
	return p.responses[idx], nil
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

// recordingStore keeps a deep snapshot of the session at every persist
// call so tests can check incremental durability.
type recordingStore struct {
	snapshots []entity.ConsultSession
	failNext  bool
}

func (s *recordingStore) persist(ctx context.Context, session *entity.ConsultSession) error {
	if s.failNext {
		return errors.New("store unavailable")
	}
	snap := *session
	snap.ChatHistory = append([]entity.Message(nil), session.ChatHistory...)
	snap.ResearchResults = append([]string(nil), session.ResearchResults...)
	s.snapshots = append(s.snapshots, snap)
	return nil
}

func roles(history []entity.Message) []string {
	out := make([]string, len(history))
	for i, m := range history {
		out[i] = m.Role
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAdvanceFullPipeline(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"finding one", "finding two", "final report"}}
	store := &recordingStore{}
	runner := NewRunner(provider, logger.NewNop())

	session := entity.NewConsultSession(uuid.New())
	err := runner.Advance(context.Background(), session, "We run a logistics startup", store.persist)
	if err != nil {
		t.Fatalf("Advance() error: %v", err)
	}

	if session.CurrentState != entity.StateFinished {
		t.Errorf("state = %s, want FINISHED", session.CurrentState)
	}
	if session.CompanyInfo == nil || *session.CompanyInfo != "We run a logistics startup" {
		t.Errorf("company info = %v", session.CompanyInfo)
	}
	if got := roles(session.ChatHistory); !equalStrings(got, []string{"user", "pedro", "pedro", "juan"}) {
		t.Errorf("transcript roles = %v", got)
	}
	if session.ReportFinal == nil || *session.ReportFinal != "final report" {
		t.Errorf("report = %v", session.ReportFinal)
	}
	if provider.calls != 3 {
		t.Errorf("model calls = %d, want 3", provider.calls)
	}
	if session.ResearchCounter != len(session.ResearchResults) {
		t.Errorf("counter %d != results %d", session.ResearchCounter, len(session.ResearchResults))
	}

	// The second research prompt must carry the literal first finding.
	if len(provider.prompts) > 1 {
		if want := "finding one"; !strings.Contains(provider.prompts[1], want) {
			t.Errorf("follow-up prompt missing first finding: %q", provider.prompts[1])
		}
	}
	// The synthesis prompt must carry both findings in order.
	if len(provider.prompts) > 2 {
		for _, want := range []string{"1. finding one", "2. finding two"} {
			if !strings.Contains(provider.prompts[2], want) {
				t.Errorf("synthesis prompt missing %q: %q", want, provider.prompts[2])
			}
		}
	}
}

func TestAdvancePersistsEveryStep(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"r1", "r2", "report"}}
	store := &recordingStore{}
	runner := NewRunner(provider, logger.NewNop())

	session := entity.NewConsultSession(uuid.New())
	if err := runner.Advance(context.Background(), session, "a company", store.persist); err != nil {
		t.Fatalf("Advance() error: %v", err)
	}

	// user append, info capture, research 1, decide flow, report = 5 writes
	if len(store.snapshots) != 5 {
		t.Fatalf("persist calls = %d, want 5", len(store.snapshots))
	}

	// Invariant: counter tracks the results slice at every observation.
	for i, snap := range store.snapshots {
		if snap.ResearchCounter != len(snap.ResearchResults) {
			t.Errorf("snapshot %d: counter %d != results %d", i, snap.ResearchCounter, len(snap.ResearchResults))
		}
	}

	// Append-only: each transcript is a prefix of the next.
	for i := 1; i < len(store.snapshots); i++ {
		prev, cur := store.snapshots[i-1].ChatHistory, store.snapshots[i].ChatHistory
		if len(prev) > len(cur) {
			t.Fatalf("transcript shrank between snapshots %d and %d", i-1, i)
		}
		for j := range prev {
			if prev[j] != cur[j] {
				t.Errorf("transcript entry %d changed between snapshots %d and %d", j, i-1, i)
			}
		}
	}
}

func TestAdvanceResearchCallCountBoundaries(t *testing.T) {
	tests := []struct {
		name          string
		counterBefore int
		wantResearch  int // research calls made (total calls minus synthesis)
	}{
		{name: "fresh session runs two research calls", counterBefore: 0, wantResearch: 2},
		{name: "counter already at two runs exactly one", counterBefore: 2, wantResearch: 1},
		{name: "counter above two runs exactly one", counterBefore: 3, wantResearch: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &scriptedProvider{}
			store := &recordingStore{}
			runner := NewRunner(provider, logger.NewNop())

			session := entity.NewConsultSession(uuid.New())
			if tt.counterBefore > 0 {
				// Simulate a session resuming mid-pipeline with prior
				// research already persisted.
				info := "pre-captured company"
				session.CompanyInfo = &info
				session.CurrentState = entity.StateStartResearch
				for i := 0; i < tt.counterBefore; i++ {
					session.AppendResearch("earlier finding")
				}
			}

			if err := runner.Advance(context.Background(), session, "continue", store.persist); err != nil {
				t.Fatalf("Advance() error: %v", err)
			}

			gotResearch := provider.calls - 1 // last call is always synthesis
			if gotResearch != tt.wantResearch {
				t.Errorf("research calls = %d, want %d", gotResearch, tt.wantResearch)
			}
			if session.CurrentState != entity.StateFinished {
				t.Errorf("state = %s, want FINISHED", session.CurrentState)
			}
		})
	}
}

func TestAdvanceFirstCallFailure(t *testing.T) {
	provider := &scriptedProvider{failAt: 1}
	store := &recordingStore{}
	runner := NewRunner(provider, logger.NewNop())

	session := entity.NewConsultSession(uuid.New())
	err := runner.Advance(context.Background(), session, "a company", store.persist)
	if !apperror.IsKind(err, apperror.KindAgent) {
		t.Fatalf("expected agent error, got %v", err)
	}

	if got := roles(session.ChatHistory); !equalStrings(got, []string{"user", "system"}) {
		t.Errorf("transcript roles = %v, want [user system]", got)
	}
	if session.CurrentState != entity.StateStartResearch {
		t.Errorf("state = %s, want START_RESEARCH (not advanced)", session.CurrentState)
	}
	if session.ReportFinal != nil {
		t.Errorf("report should be nil, got %q", *session.ReportFinal)
	}
	// Both the user message and the system failure message were persisted.
	last := store.snapshots[len(store.snapshots)-1]
	if got := roles(last.ChatHistory); !equalStrings(got, []string{"user", "system"}) {
		t.Errorf("persisted transcript roles = %v", got)
	}
}

func TestAdvanceSynthesisFailureKeepsResearch(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"r1", "r2"}, failAt: 3}
	store := &recordingStore{}
	runner := NewRunner(provider, logger.NewNop())

	session := entity.NewConsultSession(uuid.New())
	err := runner.Advance(context.Background(), session, "a company", store.persist)
	if !apperror.IsKind(err, apperror.KindAgent) {
		t.Fatalf("expected agent error, got %v", err)
	}

	if session.CurrentState != entity.StateStartReport {
		t.Errorf("state = %s, want START_REPORT", session.CurrentState)
	}
	if len(session.ResearchResults) != 2 || session.ResearchCounter != 2 {
		t.Errorf("research progress lost: %v / %d", session.ResearchResults, session.ResearchCounter)
	}
	if session.ReportFinal != nil {
		t.Errorf("report should be nil")
	}
}

func TestAdvanceRejectsEmptyMessage(t *testing.T) {
	runner := NewRunner(&scriptedProvider{}, logger.NewNop())
	session := entity.NewConsultSession(uuid.New())

	err := runner.Advance(context.Background(), session, "   ", (&recordingStore{}).persist)
	if !apperror.IsKind(err, apperror.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(session.ChatHistory) != 0 {
		t.Errorf("transcript should be untouched")
	}
}

func TestAdvanceRejectsFinishedSession(t *testing.T) {
	provider := &scriptedProvider{}
	runner := NewRunner(provider, logger.NewNop())

	session := entity.NewConsultSession(uuid.New())
	session.CurrentState = entity.StateFinished

	err := runner.Advance(context.Background(), session, "more input", (&recordingStore{}).persist)
	if !apperror.IsKind(err, apperror.KindConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if provider.calls != 0 {
		t.Errorf("no model call expected, got %d", provider.calls)
	}
}

func TestAdvanceStoreFailureSurfaces(t *testing.T) {
	provider := &scriptedProvider{}
	store := &recordingStore{failNext: true}
	runner := NewRunner(provider, logger.NewNop())

	session := entity.NewConsultSession(uuid.New())
	err := runner.Advance(context.Background(), session, "a company", store.persist)
	if err == nil {
		t.Fatal("expected error from failing store")
	}
	if provider.calls != 0 {
		t.Errorf("no model call should run when the first write fails, got %d", provider.calls)
	}
}

