package analysis

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"codedrip/github"
	"codedrip/models"
)

const (
	StatusIncreasing     = "Increasing"
	StatusDecreasing     = "Decreasing"
	StatusImproving      = "Improving"
	StatusNeedsAttention = "Needs Attention"

	trendWindow = 30 * 24 * time.Hour
)

// Trends compares the last 30 days of activity with the 30 days before that.
func Trends(commits []github.CommitResponse, issues []github.IssueResponse, now time.Time) models.TrendResult {
	recentCutoff := now.Add(-trendWindow)
	previousCutoff := now.Add(-2 * trendWindow)

	var recent, previous int
	contributors := make(map[string]struct{})
	for i := range commits {
		date := commits[i].Commit.Author.Date
		switch {
		case date.After(recentCutoff):
			recent++
			if login := commits[i].AuthorLogin(); login != "" {
				contributors[login] = struct{}{}
			}
		case date.After(previousCutoff):
			previous++
		}
	}

	// With no previous activity there is nothing to compare against, so the
	// change is 0 and the trend reads as decreasing.
	change := 0.0
	changeText := "0"
	if previous > 0 {
		change = round(float64(recent-previous)/float64(previous)*100, 1)
		changeText = strconv.FormatFloat(math.Abs(change), 'f', 1, 64)
	}
	commitStatus, direction := StatusDecreasing, "decreased"
	if change > 0 {
		commitStatus, direction = StatusIncreasing, "increased"
	}

	var opened, closed int
	for i := range issues {
		if !issues[i].CreatedAt.After(recentCutoff) {
			continue
		}
		opened++
		if issues[i].State == "closed" {
			closed++
		}
	}
	issueStatus := StatusNeedsAttention
	if closed >= opened {
		issueStatus = StatusImproving
	}

	return models.TrendResult{
		CommitTrend: models.CommitTrend{
			Current:  recent,
			Previous: previous,
			Change:   change,
			Status:   commitStatus,
			Message:  fmt.Sprintf("Commits %s by %s%% in last 30 days", direction, changeText),
		},
		IssueTrend: models.IssueTrend{
			Opened:  opened,
			Closed:  closed,
			Status:  issueStatus,
			Message: fmt.Sprintf("%d issues closed out of %d opened in last 30 days", closed, opened),
		},
		ContributorTrend: models.ContributorTrend{
			RecentContributors: len(contributors),
			Message:            fmt.Sprintf("%d active contributors in last 30 days", len(contributors)),
		},
	}
}
