package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"codedrip/analysis"
	"codedrip/fetcher"
	"codedrip/github"
	"codedrip/logger"
	"codedrip/models"
	"codedrip/narrative"
)

// Store abstracts the analysis persistence backends
// (for testability)
type Store interface {
	Insert(ctx context.Context, analysis *models.RepoAnalysis) (string, error)
	FindAll(ctx context.Context) ([]models.RepoAnalysis, error)
	FindByID(ctx context.Context, id string) (*models.RepoAnalysis, error)
	Ping(ctx context.Context) error
	Close() error
}

// GitHubClient abstracts the hosting API operations needed by the service
// (for testability)
type GitHubClient interface {
	fetcher.GitHubClient
	FetchReadme(ctx context.Context, owner, name string) (string, error)
}

// Narrator abstracts the generative-text operations needed by the service
type Narrator interface {
	Summarize(ctx context.Context, in narrative.SummaryInput) (string, error)
	Answer(ctx context.Context, repo *models.RepoAnalysis, readme, question string) (string, error)
}

// Analyzer implements the repository analysis operations.
type Analyzer struct {
	store    Store
	client   GitHubClient
	narrator Narrator
	now      func() time.Time
}

// NewAnalyzer creates an Analyzer over the given collaborators.
func NewAnalyzer(store Store, client GitHubClient, narrator Narrator) *Analyzer {
	return &Analyzer{
		store:    store,
		client:   client,
		narrator: narrator,
		now:      time.Now,
	}
}

// Analyze fetches the repository behind gitURL, scores it, summarizes it and
// stores the result. An empty name defaults to the repository's own name.
func (a *Analyzer) Analyze(ctx context.Context, name, gitURL string) (*models.RepoAnalysis, error) {
	result, err := a.Build(ctx, name, gitURL)
	if err != nil {
		return nil, err
	}

	id, err := a.store.Insert(ctx, result)
	if err != nil {
		return nil, fmt.Errorf("failed to store analysis for %s: %w", gitURL, err)
	}
	result.ID = id

	logger.Info("Repository analyzed",
		zap.String("id", id),
		zap.String("repo", result.Basic.FullName),
		zap.Float64("health_score", result.Health.Score))
	return result, nil
}

// Build computes an analysis without storing it.
func (a *Analyzer) Build(ctx context.Context, name, gitURL string) (*models.RepoAnalysis, error) {
	if strings.TrimSpace(gitURL) == "" {
		return nil, models.NewInputError("Git URL is required")
	}

	owner, repoName, err := github.ParseURL(gitURL)
	if err != nil {
		return nil, err
	}

	logger.Info("Analyzing repository",
		zap.String("repo_owner", owner),
		zap.String("repo_name", repoName))

	snap, err := fetcher.Collect(ctx, a.client, owner, repoName)
	if err != nil {
		return nil, fmt.Errorf("failed to collect %s/%s: %w", owner, repoName, err)
	}

	now := a.now()
	health := analysis.Health(snap.Repo, snap.Issues, snap.Pulls, snap.Contributors, now)
	trends := analysis.Trends(snap.Commits, snap.Issues, now)

	summary, err := a.narrator.Summarize(ctx, narrative.SummaryInput{
		GitURL:        gitURL,
		Stars:         snap.Repo.StargazersCount,
		Forks:         snap.Repo.ForksCount,
		OpenIssues:    snap.Repo.OpenIssuesCount,
		Language:      snap.Repo.Language,
		HealthScore:   health.Score,
		RecentCommits: trends.CommitTrend.Current,
		Contributors:  len(snap.Contributors),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to summarize %s/%s: %w", owner, repoName, err)
	}

	if name == "" {
		name = snap.Repo.Name
	}

	return &models.RepoAnalysis{
		Name:   name,
		GitURL: gitURL,
		Basic: models.BasicInfo{
			FullName:    snap.Repo.FullName,
			Description: snap.Repo.Description,
			Stars:       snap.Repo.StargazersCount,
			Forks:       snap.Repo.ForksCount,
			Watchers:    snap.Repo.WatchersCount,
			OpenIssues:  snap.Repo.OpenIssuesCount,
			Language:    snap.Repo.Language,
			CreatedAt:   snap.Repo.CreatedAt,
			UpdatedAt:   snap.Repo.UpdatedAt,
			Size:        snap.Repo.Size,
		},
		Health:       health,
		Trends:       trends,
		Contributors: analysis.TopContributors(snap.Contributors, analysis.MaxTopContributors),
		Languages:    analysis.LanguageShares(snap.Languages),
		AIInsights:   summary,
		AnalyzedAt:   now,
	}, nil
}

// List returns every stored analysis.
func (a *Analyzer) List(ctx context.Context) ([]models.RepoAnalysis, error) {
	return a.store.FindAll(ctx)
}

// Get returns one stored analysis.
func (a *Analyzer) Get(ctx context.Context, id string) (*models.RepoAnalysis, error) {
	return a.store.FindByID(ctx, id)
}

// Ask answers a question about a stored analysis, using the README when it
// can be fetched.
func (a *Analyzer) Ask(ctx context.Context, id, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", models.NewInputError("Question is required")
	}

	repo, err := a.store.FindByID(ctx, id)
	if err != nil {
		return "", err
	}

	readme := a.readme(ctx, repo.GitURL)
	return a.narrator.Answer(ctx, repo, readme, question)
}

// Ping reports whether the store is reachable.
func (a *Analyzer) Ping(ctx context.Context) error {
	return a.store.Ping(ctx)
}

// readme fetches the README for gitURL. Expected failures are logged at warn,
// anything else at error; the result is "" in both cases.
func (a *Analyzer) readme(ctx context.Context, gitURL string) string {
	owner, name, err := github.ParseURL(gitURL)
	if err != nil {
		logger.Warn("Stored URL cannot be parsed, skipping README",
			zap.String("git_url", gitURL),
			zap.Error(err))
		return ""
	}

	readme, err := a.client.FetchReadme(ctx, owner, name)
	if err == nil {
		return readme
	}

	var urlErr *url.Error
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Error("README fetch interrupted",
			zap.String("repo", owner+"/"+name),
			zap.Error(err))
	case errors.Is(err, models.ErrRemoteAPI), errors.As(err, &urlErr):
		logger.Warn("README not available",
			zap.String("repo", owner+"/"+name),
			zap.Error(err))
	default:
		logger.Error("Unexpected README fetch failure",
			zap.String("repo", owner+"/"+name),
			zap.Error(err))
	}
	return ""
}
