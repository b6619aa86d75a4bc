// Package narrative produces the free-text parts of an analysis: the short
// summary stored with each repository and answers to user questions.
package narrative

import (
	"context"
	"time"

	"go.uber.org/zap"

	"codedrip/logger"
	"codedrip/models"
	"codedrip/retry"
)

const (
	// SummaryUnavailable is stored when the provider returned no summary text.
	SummaryUnavailable = "No AI analysis available."
	// AnswerUnavailable is returned when the provider produced no answer text.
	AnswerUnavailable = "Unable to generate answer. Please try again."
)

// Narrator wraps a Generator with the prompts and fallbacks used by the service.
type Narrator struct {
	gen    Generator
	policy retry.Policy
}

// Option configures a Narrator.
type Option func(*Narrator)

// WithRetryPolicy replaces the retry policy used for answers.
func WithRetryPolicy(p retry.Policy) Option {
	return func(n *Narrator) {
		n.policy = p
	}
}

// NewNarrator returns a Narrator that retries answers with retry.Default.
func NewNarrator(gen Generator, opts ...Option) *Narrator {
	n := &Narrator{gen: gen, policy: retry.Default}
	for _, opt := range opts {
		opt(n)
	}
	if n.policy.OnRetry == nil {
		n.policy.OnRetry = func(attempt int, err error, wait time.Duration) {
			logger.Warn("Answer generation failed, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(err))
		}
	}
	return n
}

// Summarize makes a single attempt. A provider failure is returned; an empty
// result yields SummaryUnavailable.
func (n *Narrator) Summarize(ctx context.Context, in SummaryInput) (string, error) {
	text, err := n.gen.Generate(ctx, SummaryPrompt(in))
	if err != nil {
		logger.Error("Failed to generate repository summary",
			zap.String("git_url", in.GitURL),
			zap.Error(err))
		return "", err
	}
	if text == "" {
		return SummaryUnavailable, nil
	}
	return text, nil
}

// Answer responds to question about repo, retrying provider failures. The error
// of the last attempt is returned when every attempt fails.
func (n *Narrator) Answer(ctx context.Context, repo *models.RepoAnalysis, readme, question string) (string, error) {
	prompt := QuestionPrompt(repo, readme, question)

	var text string
	err := retry.Do(ctx, n.policy, func(ctx context.Context) error {
		var err error
		text, err = n.gen.Generate(ctx, prompt)
		return err
	})
	if err != nil {
		logger.Error("Failed to generate answer",
			zap.String("repo", repo.Basic.FullName),
			zap.Error(err))
		return "", err
	}
	if text == "" {
		return AnswerUnavailable, nil
	}
	return text, nil
}
