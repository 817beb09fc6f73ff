package analysis_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amlaw/client-portal/internal/analysis"
	"github.com/amlaw/client-portal/internal/domain"
	"github.com/amlaw/client-portal/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider answers by section; behaviour is keyed on section title
type fakeProvider struct {
	calls   atomic.Int32
	delays  map[string]time.Duration
	errs    map[string]error
	answers map[string]string
}

func (f *fakeProvider) Name() string              { return "fake" }
func (f *fakeProvider) AvailableModels() []string { return []string{"fake-1"} }
func (f *fakeProvider) DefaultModel() string      { return "fake-1" }
func (f *fakeProvider) IsConfigured() bool        { return true }

func (f *fakeProvider) Generate(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	f.calls.Add(1)

	title := sectionOf(req.Prompt)
	if d := f.delays[title]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.errs[title]; err != nil {
		return nil, err
	}
	text, ok := f.answers[title]
	if !ok {
		text = "analysis for " + title
	}
	return &llm.Response{Text: text, Model: model}, nil
}

func sectionOf(prompt string) string {
	for _, s := range domain.AnalysisSections() {
		if strings.Contains(prompt, "("+s.Prompt+")") {
			return s.Title
		}
	}
	return ""
}

func validRequest() domain.AnalysisRequest {
	return domain.AnalysisRequest{
		CaseType:      "Labour Dispute",
		Jurisdiction:  "Gauteng",
		LegalQuestion: "Was the dismissal procedurally fair?",
	}
}

var wantOrder = []string{
	domain.SectionFramework,
	domain.SectionCaseLaw,
	domain.SectionProvinces,
	domain.SectionProcess,
	domain.SectionLegalAid,
}

func titles(sections []domain.AnalysisSection) []string {
	out := make([]string, len(sections))
	for i, s := range sections {
		out[i] = s.Title
	}
	return out
}

func TestDispatch_Success(t *testing.T) {
	p := &fakeProvider{}
	sections, err := analysis.NewDispatcher(time.Second).Dispatch(context.Background(), p, "", validRequest())
	require.NoError(t, err)

	assert.Equal(t, wantOrder, titles(sections))
	assert.EqualValues(t, 5, p.calls.Load())
	for _, s := range sections {
		assert.Equal(t, "analysis for "+s.Title, s.Content)
	}
}

func TestDispatch_OrderIndependentOfCompletion(t *testing.T) {
	p := &fakeProvider{delays: map[string]time.Duration{
		domain.SectionFramework: 40 * time.Millisecond,
		domain.SectionCaseLaw:   30 * time.Millisecond,
		domain.SectionProvinces: 20 * time.Millisecond,
		domain.SectionProcess:   10 * time.Millisecond,
	}}

	sections, err := analysis.NewDispatcher(0).Dispatch(context.Background(), p, "", validRequest())
	require.NoError(t, err)
	assert.Equal(t, wantOrder, titles(sections))
}

func TestDispatch_RunsConcurrently(t *testing.T) {
	delays := map[string]time.Duration{}
	for _, title := range wantOrder {
		delays[title] = 100 * time.Millisecond
	}
	p := &fakeProvider{delays: delays}

	start := time.Now()
	_, err := analysis.NewDispatcher(0).Dispatch(context.Background(), p, "", validRequest())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestDispatch_FailAnyFailAll(t *testing.T) {
	upstream := errors.New("quota exceeded")

	tests := []struct {
		name    string
		p       *fakeProvider
		section string
		cause   error
	}{
		{
			name:    "single error",
			p:       &fakeProvider{errs: map[string]error{domain.SectionProvinces: upstream}},
			section: domain.SectionProvinces,
			cause:   upstream,
		},
		{
			name:    "empty content",
			p:       &fakeProvider{answers: map[string]string{domain.SectionLegalAid: "  \n"}},
			section: domain.SectionLegalAid,
			cause:   domain.ErrEmptyContent,
		},
		{
			name: "first failure in template order wins",
			p: &fakeProvider{
				errs:    map[string]error{domain.SectionProcess: upstream},
				answers: map[string]string{domain.SectionCaseLaw: ""},
				delays:  map[string]time.Duration{domain.SectionCaseLaw: 30 * time.Millisecond},
			},
			section: domain.SectionCaseLaw,
			cause:   domain.ErrEmptyContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sections, err := analysis.NewDispatcher(0).Dispatch(context.Background(), tt.p, "", validRequest())
			assert.Empty(t, sections)

			var failed *domain.AnalysisFailedError
			require.ErrorAs(t, err, &failed)
			assert.Equal(t, tt.section, failed.Section)
			assert.ErrorIs(t, err, tt.cause)
			assert.ErrorIs(t, err, domain.ErrCollaborator)
			assert.Contains(t, err.Error(), "failed to generate legal analysis for "+tt.section)
			assert.EqualValues(t, 5, tt.p.calls.Load())
		})
	}
}

func TestDispatch_ValidationBeforeAnyCall(t *testing.T) {
	tests := []struct {
		name string
		req  domain.AnalysisRequest
	}{
		{"empty question", domain.AnalysisRequest{CaseType: "Family Law", LegalQuestion: "   "}},
		{"empty case type", domain.AnalysisRequest{LegalQuestion: "Custody?"}},
		{"unknown case type", domain.AnalysisRequest{CaseType: "Maritime", LegalQuestion: "Salvage?"}},
		{"unknown jurisdiction", domain.AnalysisRequest{CaseType: "Family Law", Jurisdiction: "Narnia", LegalQuestion: "Custody?"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{}
			sections, err := analysis.NewDispatcher(0).Dispatch(context.Background(), p, "", tt.req)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Nil(t, sections)
			assert.Zero(t, p.calls.Load())
		})
	}
}

func TestDispatch_CallTimeout(t *testing.T) {
	p := &fakeProvider{delays: map[string]time.Duration{domain.SectionFramework: time.Second}}

	start := time.Now()
	_, err := analysis.NewDispatcher(50*time.Millisecond).Dispatch(context.Background(), p, "", validRequest())

	var failed *domain.AnalysisFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, domain.SectionFramework, failed.Section)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestBuildPrompt(t *testing.T) {
	req := domain.AnalysisRequest{
		CaseType:        "Land Reform",
		Jurisdiction:    "Land Claims Court",
		LegalQuestion:   "Can the restitution claim be lodged late?",
		InvolvedParties: "Community trust, state",
		ExistingDocs:    "Title deed",
	}
	section := domain.AnalysisSections()[1]

	prompt := analysis.BuildPrompt(section, req)

	assert.True(t, strings.HasPrefix(prompt, "South African Legal Matter:\n"))
	assert.Contains(t, prompt, "- Case Type: Land Reform\n")
	assert.Contains(t, prompt, "- Jurisdiction: Land Claims Court\n")
	assert.Contains(t, prompt, "- Involved Parties: Community trust, state\n")
	assert.Contains(t, prompt, "- Existing Documentation: Title deed\n")
	assert.Contains(t, prompt, "Legal Question:\nCan the restitution claim be lodged late?\n")
	assert.Contains(t, prompt, "Analysis Requirements (Reference relevant Constitutional Court and High Court decisions):\n")
	assert.Contains(t, prompt, "- Suggest local legal aid resources\n")
}
