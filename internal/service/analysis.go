package service

import (
	"context"
	"errors"

	"github.com/amlaw/client-portal/internal/analysis"
	"github.com/amlaw/client-portal/internal/domain"
	"github.com/amlaw/client-portal/internal/llm"
)

// AnalysisService runs legal analyses and keeps the panel state in the
// client's session.
type AnalysisService struct {
	sessions   domain.SessionStore
	dispatcher *analysis.Dispatcher
	llmRouter  *llm.Router
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(sessions domain.SessionStore, dispatcher *analysis.Dispatcher, llmRouter *llm.Router) *AnalysisService {
	return &AnalysisService{
		sessions:   sessions,
		dispatcher: dispatcher,
		llmRouter:  llmRouter,
	}
}

// Options lists the selector choices and section titles
func (s *AnalysisService) Options() domain.AnalysisOptions {
	sections := domain.AnalysisSections()
	titles := make([]string, len(sections))
	for i, sec := range sections {
		titles[i] = sec.Title
	}
	return domain.AnalysisOptions{
		CaseTypes:     domain.CaseTypes,
		Jurisdictions: domain.Jurisdictions,
		Sections:      titles,
	}
}

// Current returns the session's analysis panel
func (s *AnalysisService) Current(session *domain.Session) domain.AnalysisState {
	return session.Analysis
}

// Analyze stores the inputs, dispatches the section calls and stores the
// outcome. On any failure no sections are kept.
func (s *AnalysisService) Analyze(ctx context.Context, session *domain.Session, input domain.AnalyzeInput) (*domain.AnalysisState, error) {
	req := input.AnalysisRequest.Normalize()
	session.Analysis.Form = req

	if err := req.Validate(); err != nil {
		return nil, s.fail(ctx, session, err)
	}

	provider, err := s.llmRouter.GetProvider(input.Provider)
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			err = &domain.CollaboratorError{Collaborator: "text generation", Op: "select provider", Err: err}
		} else {
			err = &domain.ValidationError{Field: "provider", Message: err.Error()}
		}
		return nil, s.fail(ctx, session, err)
	}

	sections, err := s.dispatcher.Dispatch(ctx, provider, input.Model, req)
	if err != nil {
		return nil, s.fail(ctx, session, err)
	}

	session.Analysis.ReportGenerated = true
	session.Analysis.Sections = sections
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	state := session.Analysis
	return &state, nil
}

// Clear resets the form to its defaults and drops the report
func (s *AnalysisService) Clear(ctx context.Context, session *domain.Session) (*domain.AnalysisState, error) {
	session.Analysis = domain.DefaultAnalysisState()
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	state := session.Analysis
	return &state, nil
}

// fail records a failed invocation and returns cause, or the save error
func (s *AnalysisService) fail(ctx context.Context, session *domain.Session, cause error) error {
	session.Analysis.ReportGenerated = false
	session.Analysis.Sections = []domain.AnalysisSection{}
	if err := s.save(ctx, session); err != nil {
		return err
	}
	return cause
}

func (s *AnalysisService) save(ctx context.Context, session *domain.Session) error {
	if err := s.sessions.Save(ctx, session); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return &domain.AuthError{Reason: "session has ended"}
		}
		return &domain.CollaboratorError{Collaborator: "session store", Op: "save", Err: err}
	}
	return nil
}
