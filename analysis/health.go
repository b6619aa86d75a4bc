// Package analysis derives health scores, activity trends and summary breakdowns
// from the records fetched for a repository. Every function is pure; the caller
// supplies the reference time.
package analysis

import (
	"fmt"
	"math"
	"time"

	"codedrip/github"
	"codedrip/models"
)

const (
	StatusHealthy  = "Healthy"
	StatusWarning  = "Warning"
	StatusCritical = "Critical"

	oldIssueDays = 30
	stalePRDays  = 7
)

// Penalties subtracted from a perfect score of 100. Each applies at most once.
const (
	penaltyVeryStale      = 30
	penaltyStale          = 15
	penaltyLowClosure     = 20
	penaltyIssueBacklog   = 15
	penaltyPRBacklog      = 15
	penaltyFewContributor = 10
)

// Health scores a repository between 0 and 100 and labels four sub-metrics.
func Health(
	repo *github.RepoResponse,
	issues []github.IssueResponse,
	pulls []github.PullResponse,
	contributors []github.ContributorResponse,
	now time.Time,
) models.HealthResult {
	daysSinceUpdate := wholeDays(now, repo.UpdatedAt)

	var openIssues, closedIssues, oldIssues int
	for i := range issues {
		issue := &issues[i]
		if issue.IsPullRequest() {
			continue
		}
		switch issue.State {
		case "open":
			openIssues++
			if wholeDays(now, issue.CreatedAt) > oldIssueDays {
				oldIssues++
			}
		case "closed":
			closedIssues++
		}
	}

	var openPRs, stalePRs int
	for i := range pulls {
		if pulls[i].State != "open" {
			continue
		}
		openPRs++
		if wholeDays(now, pulls[i].CreatedAt) > stalePRDays {
			stalePRs++
		}
	}

	score := 100.0
	switch {
	case daysSinceUpdate > 90:
		score -= penaltyVeryStale
	case daysSinceUpdate > 30:
		score -= penaltyStale
	}
	// The ratio uses the whole issues page, pull requests included.
	if len(issues) > 0 && float64(closedIssues)/float64(len(issues)) < 0.5 {
		score -= penaltyLowClosure
	}
	if oldIssues > 10 {
		score -= penaltyIssueBacklog
	}
	if stalePRs > 5 {
		score -= penaltyPRBacklog
	}
	if len(contributors) < 3 {
		score -= penaltyFewContributor
	}

	return models.HealthResult{
		Score: math.Max(0, round(score, 1)),
		Metrics: models.HealthMetrics{
			CommitActivity: models.CommitActivity{
				Status:          activityStatus(daysSinceUpdate),
				Message:         fmt.Sprintf("Last updated %d days ago", daysSinceUpdate),
				DaysSinceUpdate: daysSinceUpdate,
			},
			IssueHealth: models.IssueHealth{
				Total:     len(issues),
				Open:      openIssues,
				Closed:    closedIssues,
				OldIssues: oldIssues,
				Status:    thresholdStatus(oldIssues < 5),
				Message:   fmt.Sprintf("%d issues older than 30 days", oldIssues),
			},
			PRStatus: models.PRStatus{
				Total:    len(pulls),
				Open:     openPRs,
				StalePRs: stalePRs,
				Status:   thresholdStatus(stalePRs < 3),
				Message:  fmt.Sprintf("%d PRs waiting for review over a week", stalePRs),
			},
			ContributorHealth: models.ContributorHealth{
				Count:   len(contributors),
				Status:  thresholdStatus(len(contributors) > 5),
				Message: fmt.Sprintf("%d active contributors", len(contributors)),
			},
		},
	}
}

func activityStatus(daysSinceUpdate int) string {
	switch {
	case daysSinceUpdate < 30:
		return StatusHealthy
	case daysSinceUpdate < 90:
		return StatusWarning
	default:
		return StatusCritical
	}
}

func thresholdStatus(healthy bool) string {
	if healthy {
		return StatusHealthy
	}
	return StatusWarning
}

// wholeDays is the number of complete days from t to now, rounded toward negative infinity.
func wholeDays(now, t time.Time) int {
	return int(math.Floor(now.Sub(t).Hours() / 24))
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
