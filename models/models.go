// Package models defines the core data structures used throughout the application.
package models

import "time"

// RepoAnalysis is the persisted result of analyzing one repository.
type RepoAnalysis struct {
	ID           string          `json:"_id" bson:"-"`
	Name         string          `json:"name" bson:"name"`
	GitURL       string          `json:"gitUrl" bson:"gitUrl"`
	Basic        BasicInfo       `json:"basic" bson:"basic"`
	Health       HealthResult    `json:"health" bson:"health"`
	Trends       TrendResult     `json:"trends" bson:"trends"`
	Contributors []Contributor   `json:"contributors" bson:"contributors"`
	Languages    []LanguageShare `json:"languages" bson:"languages"`
	AIInsights   string          `json:"aiInsights" bson:"aiInsights"`
	AnalyzedAt   time.Time       `json:"analyzedAt" bson:"analyzedAt"`
}

// BasicInfo is a snapshot of the repository metadata at analysis time.
type BasicInfo struct {
	FullName    string    `json:"fullName" bson:"fullName"`
	Description string    `json:"description" bson:"description"`
	Stars       int       `json:"stars" bson:"stars"`
	Forks       int       `json:"forks" bson:"forks"`
	Watchers    int       `json:"watchers" bson:"watchers"`
	OpenIssues  int       `json:"openIssues" bson:"openIssues"`
	Language    string    `json:"language" bson:"language"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
	Size        int       `json:"size" bson:"size"`
}

// Contributor summarizes one of the top contributors of a repository.
type Contributor struct {
	Login         string `json:"login" bson:"login"`
	Contributions int    `json:"contributions" bson:"contributions"`
	AvatarURL     string `json:"avatarUrl" bson:"avatarUrl"`
	ProfileURL    string `json:"profileUrl" bson:"profileUrl"`
}

// LanguageShare is the share of repository bytes written in one language.
type LanguageShare struct {
	Language   string  `json:"language" bson:"language"`
	Percentage float64 `json:"percentage" bson:"percentage"`
}

// HealthResult holds the overall health score and its sub-metrics.
type HealthResult struct {
	Score   float64       `json:"score" bson:"score"`
	Metrics HealthMetrics `json:"metrics" bson:"metrics"`
}

type HealthMetrics struct {
	CommitActivity    CommitActivity    `json:"commitActivity" bson:"commitActivity"`
	IssueHealth       IssueHealth       `json:"issueHealth" bson:"issueHealth"`
	PRStatus          PRStatus          `json:"prStatus" bson:"prStatus"`
	ContributorHealth ContributorHealth `json:"contributorHealth" bson:"contributorHealth"`
}

type CommitActivity struct {
	Status          string `json:"status" bson:"status"`
	Message         string `json:"message" bson:"message"`
	DaysSinceUpdate int    `json:"daysSinceUpdate" bson:"daysSinceUpdate"`
}

type IssueHealth struct {
	Total     int    `json:"total" bson:"total"`
	Open      int    `json:"open" bson:"open"`
	Closed    int    `json:"closed" bson:"closed"`
	OldIssues int    `json:"oldIssues" bson:"oldIssues"`
	Status    string `json:"status" bson:"status"`
	Message   string `json:"message" bson:"message"`
}

type PRStatus struct {
	Total    int    `json:"total" bson:"total"`
	Open     int    `json:"open" bson:"open"`
	StalePRs int    `json:"stalePRs" bson:"stalePRs"`
	Status   string `json:"status" bson:"status"`
	Message  string `json:"message" bson:"message"`
}

type ContributorHealth struct {
	Count   int    `json:"count" bson:"count"`
	Status  string `json:"status" bson:"status"`
	Message string `json:"message" bson:"message"`
}

// TrendResult holds the 30/60-day windowed activity trends.
type TrendResult struct {
	CommitTrend      CommitTrend      `json:"commitTrend" bson:"commitTrend"`
	IssueTrend       IssueTrend       `json:"issueTrend" bson:"issueTrend"`
	ContributorTrend ContributorTrend `json:"contributorTrend" bson:"contributorTrend"`
}

type CommitTrend struct {
	Current  int     `json:"current" bson:"current"`
	Previous int     `json:"previous" bson:"previous"`
	Change   float64 `json:"change" bson:"change"`
	Status   string  `json:"status" bson:"status"`
	Message  string  `json:"message" bson:"message"`
}

type IssueTrend struct {
	Opened  int    `json:"opened" bson:"opened"`
	Closed  int    `json:"closed" bson:"closed"`
	Status  string `json:"status" bson:"status"`
	Message string `json:"message" bson:"message"`
}

type ContributorTrend struct {
	RecentContributors int    `json:"recentContributors" bson:"recentContributors"`
	Message            string `json:"message" bson:"message"`
}
