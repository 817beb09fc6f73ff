package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/amlaw/client-portal/internal/analysis"
	"github.com/amlaw/client-portal/internal/credential"
	"github.com/amlaw/client-portal/internal/domain"
	"github.com/amlaw/client-portal/internal/llm"
	"github.com/amlaw/client-portal/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newStaticCredentials() *credential.Static {
	return credential.NewStatic(domain.DefaultClients())
}

func newStoredSession(t *testing.T, store domain.SessionStore, clientID string) *domain.Session {
	t.Helper()
	session := domain.NewSession(clientID)
	require.NoError(t, store.Create(context.Background(), session))
	return session
}

func newAnalysisService(provider llm.Provider, sessions domain.SessionStore) *AnalysisService {
	router := llm.NewRouter("mock-provider")
	router.RegisterProvider(provider)
	return NewAnalysisService(sessions, analysis.NewDispatcher(time.Second), router)
}

func sectionPrompt(title string) func(llm.Request) bool {
	for _, s := range domain.AnalysisSections() {
		if s.Title == title {
			return func(req llm.Request) bool {
				return strings.Contains(req.Prompt, "("+s.Prompt+")")
			}
		}
	}
	panic("unknown section " + title)
}

func analyzeInput() domain.AnalyzeInput {
	return domain.AnalyzeInput{
		AnalysisRequest: domain.AnalysisRequest{
			CaseType:      "Family Law",
			Jurisdiction:  "Western Cape",
			LegalQuestion: "  How is maintenance calculated?  ",
		},
	}
}

func TestAnalysisService_Analyze(t *testing.T) {
	ctx := context.Background()

	t.Run("success persists report", func(t *testing.T) {
		sessions := memory.NewSessionStore(time.Hour)
		provider := new(MockLLMProvider)
		provider.On("Generate", mock.Anything, mock.Anything, "").
			Return(&llm.Response{Text: "Maintenance Act 99 of 1998"}, nil)

		svc := newAnalysisService(provider, sessions)
		session := newStoredSession(t, sessions, "1234")

		state, err := svc.Analyze(ctx, session, analyzeInput())
		require.NoError(t, err)
		assert.True(t, state.ReportGenerated)
		require.Len(t, state.Sections, 5)
		assert.Equal(t, domain.SectionFramework, state.Sections[0].Title)
		assert.Equal(t, domain.SectionLegalAid, state.Sections[4].Title)
		provider.AssertNumberOfCalls(t, "Generate", 5)

		stored, err := sessions.Get(ctx, session.ID)
		require.NoError(t, err)
		assert.True(t, stored.Analysis.ReportGenerated)
		assert.Len(t, stored.Analysis.Sections, 5)
		assert.Equal(t, "How is maintenance calculated?", stored.Analysis.Form.LegalQuestion)
	})

	t.Run("validation failure keeps form and calls nothing", func(t *testing.T) {
		sessions := memory.NewSessionStore(time.Hour)
		provider := new(MockLLMProvider)
		svc := newAnalysisService(provider, sessions)
		session := newStoredSession(t, sessions, "1234")

		input := analyzeInput()
		input.LegalQuestion = "   "
		input.InvolvedParties = "Both parents"

		state, err := svc.Analyze(ctx, session, input)
		assert.Nil(t, state)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, "please provide at least a legal question and case type", err.Error())
		provider.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)

		stored, err := sessions.Get(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, "Both parents", stored.Analysis.Form.InvolvedParties)
		assert.False(t, stored.Analysis.ReportGenerated)
	})

	t.Run("any section failure discards the report", func(t *testing.T) {
		sessions := memory.NewSessionStore(time.Hour)
		provider := new(MockLLMProvider)
		provider.On("Generate", mock.Anything, mock.MatchedBy(sectionPrompt(domain.SectionProcess)), "").
			Return(nil, errors.New("quota exceeded"))
		provider.On("Generate", mock.Anything, mock.Anything, "").
			Return(&llm.Response{Text: "ok"}, nil)

		svc := newAnalysisService(provider, sessions)
		session := newStoredSession(t, sessions, "1234")
		session.Analysis.ReportGenerated = true
		session.Analysis.Sections = []domain.AnalysisSection{{Title: domain.SectionFramework, Content: "stale"}}
		require.NoError(t, sessions.Save(ctx, session))

		_, err := svc.Analyze(ctx, session, analyzeInput())
		var failed *domain.AnalysisFailedError
		require.ErrorAs(t, err, &failed)
		assert.Equal(t, domain.SectionProcess, failed.Section)

		stored, err := sessions.Get(ctx, session.ID)
		require.NoError(t, err)
		assert.False(t, stored.Analysis.ReportGenerated)
		assert.Empty(t, stored.Analysis.Sections)
	})

	t.Run("unknown provider", func(t *testing.T) {
		sessions := memory.NewSessionStore(time.Hour)
		svc := newAnalysisService(new(MockLLMProvider), sessions)
		session := newStoredSession(t, sessions, "1234")

		input := analyzeInput()
		input.Provider = "nope"
		_, err := svc.Analyze(ctx, session, input)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("ended session", func(t *testing.T) {
		sessions := memory.NewSessionStore(time.Hour)
		provider := new(MockLLMProvider)
		provider.On("Generate", mock.Anything, mock.Anything, "").
			Return(&llm.Response{Text: "ok"}, nil)
		svc := newAnalysisService(provider, sessions)
		session := newStoredSession(t, sessions, "1234")
		require.NoError(t, sessions.Delete(ctx, session.ID))

		_, err := svc.Analyze(ctx, session, analyzeInput())
		assert.ErrorIs(t, err, domain.ErrAuth)
	})
}

func TestAnalysisService_Clear(t *testing.T) {
	ctx := context.Background()
	sessions := memory.NewSessionStore(time.Hour)
	svc := newAnalysisService(new(MockLLMProvider), sessions)
	session := newStoredSession(t, sessions, "1234")

	session.Analysis = domain.AnalysisState{
		Form:            analyzeInput().AnalysisRequest,
		ReportGenerated: true,
		Sections:        []domain.AnalysisSection{{Title: domain.SectionFramework, Content: "x"}},
	}
	require.NoError(t, sessions.Save(ctx, session))

	state, err := svc.Clear(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAnalysisState(), *state)
	assert.Equal(t, "Labour Dispute", state.Form.CaseType)
	assert.Equal(t, "Constitutional Court", state.Form.Jurisdiction)

	stored, err := sessions.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.False(t, stored.Analysis.ReportGenerated)
	assert.Empty(t, stored.Analysis.Form.LegalQuestion)
}

func TestAnalysisService_Options(t *testing.T) {
	svc := newAnalysisService(new(MockLLMProvider), memory.NewSessionStore(time.Hour))
	opts := svc.Options()

	assert.Equal(t, domain.CaseTypes, opts.CaseTypes)
	assert.Equal(t, domain.Jurisdictions, opts.Jurisdictions)
	assert.Equal(t, []string{"Framework", "Case Law", "Provinces", "Process", "Legal Aid"}, opts.Sections)
}
