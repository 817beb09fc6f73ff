// Package analysis fans a legal question out to the text-generation provider,
// one call per report section, and gathers the answers in section order.
package analysis

import (
	"context"
	"strings"
	"time"

	"github.com/amlaw/client-portal/internal/domain"
	"github.com/amlaw/client-portal/internal/llm"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Dispatcher issues the section calls of one analysis concurrently
type Dispatcher struct {
	callTimeout time.Duration
}

// NewDispatcher creates a dispatcher. A zero callTimeout leaves each call
// bounded only by the caller's context.
func NewDispatcher(callTimeout time.Duration) *Dispatcher {
	return &Dispatcher{callTimeout: callTimeout}
}

type outcome struct {
	text string
	err  error
}

// Dispatch validates req and runs one generation per section template.
// Either every section resolves with non-empty content and the sections are
// returned in template order, or an AnalysisFailedError naming the first
// failing section in template order is returned with no sections.
func (d *Dispatcher) Dispatch(ctx context.Context, provider llm.Provider, model string, req domain.AnalysisRequest) ([]domain.AnalysisSection, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sections := domain.AnalysisSections()
	outcomes := make([]outcome, len(sections))
	start := time.Now()

	// Siblings are not cancelled on failure so each slot reports its own
	// outcome and the first failure in template order can be named.
	var g errgroup.Group
	for i, section := range sections {
		g.Go(func() error {
			outcomes[i] = d.generate(ctx, provider, model, section, req)
			return nil
		})
	}
	_ = g.Wait()

	for i, section := range sections {
		o := outcomes[i]
		if o.err == nil && strings.TrimSpace(o.text) == "" {
			o.err = domain.ErrEmptyContent
		}
		if o.err != nil {
			log.Error().Err(o.err).
				Str("provider", provider.Name()).
				Str("section", section.Title).
				Msg("legal analysis section failed")
			return nil, &domain.AnalysisFailedError{Section: section.Title, Err: o.err}
		}
		sections[i].Content = o.text
	}

	log.Info().
		Str("provider", provider.Name()).
		Str("case_type", req.CaseType).
		Int("sections", len(sections)).
		Dur("latency", time.Since(start)).
		Msg("legal analysis generated")

	return sections, nil
}

func (d *Dispatcher) generate(ctx context.Context, provider llm.Provider, model string, section domain.AnalysisSection, req domain.AnalysisRequest) outcome {
	if d.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.callTimeout)
		defer cancel()
	}

	resp, err := provider.Generate(ctx, llm.Request{
		Prompt:       BuildPrompt(section, req),
		SystemPrompt: SystemPrompt,
	}, model)
	if err != nil {
		return outcome{err: err}
	}
	if resp == nil {
		return outcome{err: domain.ErrEmptyContent}
	}

	log.Debug().
		Str("section", section.Title).
		Str("model", resp.Model).
		Int("tokens", resp.TokensUsed).
		Int64("latency_ms", resp.LatencyMs).
		Msg("section generated")

	return outcome{text: resp.Text}
}
