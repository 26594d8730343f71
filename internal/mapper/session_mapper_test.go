package mapper

import (
	"testing"
	"time"

	"ai-consultancy-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTripPreservesOrder(t *testing.T) {
	m := NewSessionMapper()

	info := "We run a logistics startup"
	s := entity.NewConsultSession(uuid.New())
	s.AppendMessage("user", info)
	s.CaptureCompanyInfo(info)
	s.AppendMessage("pedro", "finding one")
	s.AppendResearch("finding one")
	s.AppendMessage("pedro", "finding two")
	s.AppendResearch("finding two")
	s.CurrentState = entity.StateStartReport

	mod, err := m.ToModel(s)
	require.NoError(t, err)

	back, err := m.ToEntity(mod)
	require.NoError(t, err)

	require.Len(t, back.ChatHistory, 3)
	assert.Equal(t, "user", back.ChatHistory[0].Role)
	assert.Equal(t, "pedro", back.ChatHistory[1].Role)
	assert.Equal(t, []string{"finding one", "finding two"}, back.ResearchResults)
	assert.Equal(t, back.ResearchCounter, len(back.ResearchResults))
	assert.Equal(t, entity.StateStartReport, back.CurrentState)
	require.NotNil(t, back.CompanyInfo)
	assert.Equal(t, info, *back.CompanyInfo)
	assert.Nil(t, back.ReportFinal)
}

func TestSessionNilSequencesBecomeEmptyArrays(t *testing.T) {
	m := NewSessionMapper()

	s := &entity.ConsultSession{
		Id:           uuid.New(),
		UserId:       uuid.New(),
		CurrentState: entity.StateWaitingForInfo,
		CreatedAt:    time.Now(),
	}

	mod, err := m.ToModel(s)
	require.NoError(t, err)
	// jsonb columns must hold [] rather than null so observers can
	// always treat them as sequences.
	assert.Equal(t, "[]", string(mod.ChatHistory))
	assert.Equal(t, "[]", string(mod.ResearchResults))

	back, err := m.ToEntity(mod)
	require.NoError(t, err)
	assert.NotNil(t, back.ChatHistory)
	assert.NotNil(t, back.ResearchResults)
	assert.Equal(t, 0, back.ResearchCounter)
}
