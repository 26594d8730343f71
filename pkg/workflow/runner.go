package workflow

import (
	"context"
	"strings"

	"ai-consultancy-be/internal/constant"
	"ai-consultancy-be/internal/entity"
	"ai-consultancy-be/internal/pkg/apperror"
	"ai-consultancy-be/internal/pkg/logger"
	"ai-consultancy-be/pkg/llm"
	"ai-consultancy-be/pkg/workflow/prompt"
)

// PersistFunc durably writes the session. The runner calls it after
// every mutation so observers on the change feed see incremental
// progress, and so prior progress survives a later agent failure.
type PersistFunc func(ctx context.Context, session *entity.ConsultSession) error

// Runner drives one session through the consultancy pipeline. It owns
// the in-memory session value for the duration of Advance; callers must
// not run two advances for the same session concurrently.
type Runner struct {
	provider llm.LLMProvider
	prompts  *prompt.Builder
	logger   logger.ILogger
}

func NewRunner(provider llm.LLMProvider, log logger.ILogger) *Runner {
	return &Runner{
		provider: provider,
		prompts:  prompt.NewBuilder(),
		logger:   log,
	}
}

// Advance appends the user message and executes the state machine to
// completion in a single invocation. For a first message this runs the
// session all the way from WAITING_FOR_INFO to FINISHED (two research
// calls plus one synthesis call in the common case).
//
// Not idempotent: a FINISHED session rejects further input.
func (r *Runner) Advance(ctx context.Context, session *entity.ConsultSession, userMessage string, persist PersistFunc) error {
	if strings.TrimSpace(userMessage) == "" {
		return apperror.New(apperror.KindValidation, "message must be non-empty")
	}
	if session.Finished() {
		return apperror.New(apperror.KindConflict, "session is finished and no longer accepts input")
	}

	// The user message is durable before any agent work starts.
	session.AppendMessage(constant.ChatMessageRoleUser, userMessage)
	if err := persist(ctx, session); err != nil {
		return err
	}

	for !session.Finished() {
		switch session.CurrentState {

		case entity.StateWaitingForInfo:
			session.CaptureCompanyInfo(userMessage)
			session.CurrentState = entity.StateStartResearch
			r.logState(session)
			if err := persist(ctx, session); err != nil {
				return err
			}

		case entity.StateStartResearch:
			result, err := llm.Complete(ctx, r.provider,
				constant.PedroSystemInstructionV1,
				r.prompts.ResearchInitial(r.companyInfo(session, userMessage)),
			)
			if err != nil {
				return r.fail(ctx, session, persist, err)
			}
			session.AppendMessage(constant.ChatMessageRolePedro, result)
			session.AppendResearch(result)
			session.CurrentState = entity.StateDecideFlow
			r.logState(session)
			if err := persist(ctx, session); err != nil {
				return err
			}

		case entity.StateDecideFlow:
			// A second research pass runs only while the counter is
			// below two. A session resuming with a counter already at
			// two or more skips straight to the report.
			if session.ResearchCounter < 2 {
				result, err := llm.Complete(ctx, r.provider,
					constant.PedroSystemInstructionV1,
					r.prompts.ResearchFollowUp(r.companyInfo(session, userMessage), session.ResearchResults[0]),
				)
				if err != nil {
					return r.fail(ctx, session, persist, err)
				}
				session.AppendMessage(constant.ChatMessageRolePedro, result)
				session.AppendResearch(result)
			}
			session.CurrentState = entity.StateStartReport
			r.logState(session)
			if err := persist(ctx, session); err != nil {
				return err
			}

		case entity.StateStartReport:
			report, err := llm.Complete(ctx, r.provider,
				constant.JuanSystemInstructionV1,
				r.prompts.Synthesis(r.companyInfo(session, userMessage), session.ResearchResults),
			)
			if err != nil {
				return r.fail(ctx, session, persist, err)
			}
			session.AppendMessage(constant.ChatMessageRoleJuan, report)
			session.ReportFinal = &report
			session.CurrentState = entity.StateFinished
			r.logState(session)
			if err := persist(ctx, session); err != nil {
				return err
			}

		default:
			return apperror.New(apperror.KindUnknown, "unknown workflow state: "+string(session.CurrentState))
		}
	}

	return nil
}

// companyInfo falls back to the just-submitted message when the
// description was never captured. The precondition ordering makes this
// unreachable in practice, but prompts must never go out empty.
func (r *Runner) companyInfo(session *entity.ConsultSession, userMessage string) string {
	if session.CompanyInfo != nil {
		return *session.CompanyInfo
	}
	return userMessage
}

// fail records the agent failure in the transcript, leaves the state
// where it was, and surfaces an agent-call error. Prior persisted steps
// are kept.
func (r *Runner) fail(ctx context.Context, session *entity.ConsultSession, persist PersistFunc, cause error) error {
	message := "Agent call failed: " + cause.Error()
	session.AppendMessage(constant.ChatMessageRoleSystem, message)
	if err := persist(ctx, session); err != nil {
		r.logger.Error("Workflow", "Failed to persist failure message", map[string]interface{}{
			"session_id": session.Id,
			"error":      err,
		})
	}
	if apperror.KindOf(cause) == apperror.KindConfig {
		return cause
	}
	return apperror.Wrap(apperror.KindAgent, message, cause)
}

func (r *Runner) logState(session *entity.ConsultSession) {
	r.logger.Info("Workflow", "State transition", map[string]interface{}{
		"session_id":       session.Id,
		"state":            session.CurrentState,
		"research_counter": session.ResearchCounter,
	})
}
