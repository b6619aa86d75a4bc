// Package fetcher gathers everything the analysis needs about one repository.
package fetcher

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"codedrip/github"
	"codedrip/logger"
)

// GitHubClient defines the hosting API operations needed by the fetcher
type GitHubClient interface {
	FetchRepo(ctx context.Context, owner, name string) (*github.RepoResponse, error)
	FetchCommits(ctx context.Context, owner, name string) ([]github.CommitResponse, error)
	FetchIssues(ctx context.Context, owner, name string) ([]github.IssueResponse, error)
	FetchPulls(ctx context.Context, owner, name string) ([]github.PullResponse, error)
	FetchContributors(ctx context.Context, owner, name string) ([]github.ContributorResponse, error)
	FetchLanguages(ctx context.Context, owner, name string) (*github.Languages, error)
}

// Snapshot is the raw hosting API data for one repository.
type Snapshot struct {
	Repo         *github.RepoResponse
	Commits      []github.CommitResponse
	Issues       []github.IssueResponse
	Pulls        []github.PullResponse
	Contributors []github.ContributorResponse
	Languages    *github.Languages
}

// Collect fetches the six resources concurrently. The first failure cancels
// the remaining requests and is returned; no partial snapshot is produced.
func Collect(ctx context.Context, client GitHubClient, owner, name string) (*Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		repo, err := client.FetchRepo(gctx, owner, name)
		if err != nil {
			return fmt.Errorf("failed to fetch repository: %w", err)
		}
		snap.Repo = repo
		return nil
	})
	g.Go(func() error {
		commits, err := client.FetchCommits(gctx, owner, name)
		if err != nil {
			return fmt.Errorf("failed to fetch commits: %w", err)
		}
		snap.Commits = commits
		return nil
	})
	g.Go(func() error {
		issues, err := client.FetchIssues(gctx, owner, name)
		if err != nil {
			return fmt.Errorf("failed to fetch issues: %w", err)
		}
		snap.Issues = issues
		return nil
	})
	g.Go(func() error {
		pulls, err := client.FetchPulls(gctx, owner, name)
		if err != nil {
			return fmt.Errorf("failed to fetch pull requests: %w", err)
		}
		snap.Pulls = pulls
		return nil
	})
	g.Go(func() error {
		contributors, err := client.FetchContributors(gctx, owner, name)
		if err != nil {
			return fmt.Errorf("failed to fetch contributors: %w", err)
		}
		snap.Contributors = contributors
		return nil
	})
	g.Go(func() error {
		languages, err := client.FetchLanguages(gctx, owner, name)
		if err != nil {
			return fmt.Errorf("failed to fetch languages: %w", err)
		}
		snap.Languages = languages
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("Repository data collected",
		zap.String("repo", owner+"/"+name),
		zap.Int("commits", len(snap.Commits)),
		zap.Int("issues", len(snap.Issues)),
		zap.Int("pulls", len(snap.Pulls)),
		zap.Int("contributors", len(snap.Contributors)))
	return &snap, nil
}
