package github

import (
	"fmt"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// RepoResponse is the subset of /repos/{owner}/{repo} the analysis reads.
type RepoResponse struct {
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	Description     string    `json:"description"`
	HTMLURL         string    `json:"html_url"`
	Language        string    `json:"language"`
	ForksCount      int       `json:"forks_count"`
	StargazersCount int       `json:"stargazers_count"`
	OpenIssuesCount int       `json:"open_issues_count"`
	WatchersCount   int       `json:"watchers_count"`
	Size            int       `json:"size"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (r *RepoResponse) validate() error {
	if r.FullName == "" {
		return fmt.Errorf("repository is missing full_name")
	}
	if r.UpdatedAt.IsZero() {
		return fmt.Errorf("repository %s is missing updated_at", r.FullName)
	}
	return nil
}

// Account is the linked GitHub user of a commit, issue or pull request.
type Account struct {
	Login string `json:"login"`
}

type CommitResponse struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name  string    `json:"name"`
			Email string    `json:"email"`
			Date  time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	// Author is nil when the commit email is not linked to a GitHub account.
	Author  *Account `json:"author"`
	HTMLURL string   `json:"html_url"`
}

func (c *CommitResponse) validate() error {
	if c.Commit.Author.Date.IsZero() {
		return fmt.Errorf("commit %s is missing an author date", c.SHA)
	}
	return nil
}

// AuthorLogin returns the linked account login, or "" when there is none.
func (c *CommitResponse) AuthorLogin() string {
	if c.Author == nil {
		return ""
	}
	return c.Author.Login
}

type IssueResponse struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	// PullRequest is present when the issues endpoint returns a pull request.
	PullRequest *struct {
		URL string `json:"url"`
	} `json:"pull_request,omitempty"`
}

func (i *IssueResponse) validate() error {
	if i.State == "" {
		return fmt.Errorf("issue #%d is missing state", i.Number)
	}
	if i.CreatedAt.IsZero() {
		return fmt.Errorf("issue #%d is missing created_at", i.Number)
	}
	return nil
}

// IsPullRequest reports whether the entry is a pull request listed among issues.
func (i *IssueResponse) IsPullRequest() bool {
	return i.PullRequest != nil
}

type PullResponse struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *PullResponse) validate() error {
	if p.State == "" {
		return fmt.Errorf("pull request #%d is missing state", p.Number)
	}
	if p.CreatedAt.IsZero() {
		return fmt.Errorf("pull request #%d is missing created_at", p.Number)
	}
	return nil
}

type ContributorResponse struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
	AvatarURL     string `json:"avatar_url"`
	HTMLURL       string `json:"html_url"`
}

func (c *ContributorResponse) validate() error {
	if c.Login == "" {
		return fmt.Errorf("contributor is missing login")
	}
	return nil
}

// Languages maps language name to byte count, in the order GitHub returned them.
type Languages = orderedmap.OrderedMap[string, int64]

// NewLanguages returns an empty Languages map.
func NewLanguages() *Languages {
	return orderedmap.New[string, int64]()
}

type readmeResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}
