package narrative

import (
	"strconv"
	"strings"
	"text/template"

	"codedrip/models"
)

// SummaryInput is the data embedded in the analysis prompt.
type SummaryInput struct {
	GitURL        string
	Stars         int
	Forks         int
	OpenIssues    int
	Language      string
	HealthScore   float64
	RecentCommits int
	Contributors  int
}

var summaryTemplate = template.Must(template.New("summary").Funcs(template.FuncMap{
	"score": formatScore,
}).Parse(`Analyze this GitHub repository: {{.GitURL}}

Repository Stats:
- Stars: {{.Stars}}
- Forks: {{.Forks}}
- Open Issues: {{.OpenIssues}}
- Primary Language: {{.Language}}
- Health Score: {{score .HealthScore}}/100
- Recent Commits: {{.RecentCommits}}
- Contributors: {{.Contributors}}

Provide a concise 5-line technical analysis covering:
1. Repository purpose and main technology stack
2. Code quality and maintenance status
3. Community engagement and activity level
4. Key strengths or concerns
5. Overall recommendation for developers
`))

type questionData struct {
	Repo     *models.RepoAnalysis
	Readme   string
	Question string
}

var questionTemplate = template.Must(template.New("question").Funcs(template.FuncMap{
	"score":  formatScore,
	"orElse": orDefault,
}).Parse(`You are an expert code and project analysis assistant. Give short, technically accurate answers about GitHub repositories.

When the user asks how the project works, what it does, or to explain its workings:
1. Use the README content below as the primary source.
2. Summarize the project purpose and goals, the core technologies actually used, the step-by-step workflow, the key components and how they interact, and any distinctive features or implementation details.

For metric or health questions, reference the repository metrics and be specific about numbers and trends.

--- Repository Information ---
Repository: {{.Repo.Basic.FullName}}
URL: {{.Repo.GitURL}}
Description: {{.Repo.Basic.Description}}

README Content:
{{orElse .Readme "README not available"}}

Repository Metrics:
- Stars: {{.Repo.Basic.Stars}}
- Language: {{.Repo.Basic.Language}}
- Health Score: {{score .Repo.Health.Score}}/100
- Recent Activity: {{.Repo.Trends.CommitTrend.Message}}
- Contributors: {{.Repo.Trends.ContributorTrend.RecentContributors}} active (30 days)

AI Summary: {{orElse .Repo.AIInsights "N/A"}}
--- End Repository Information ---

Answer quality:
- Be specific and technical, using actual details from the repository and README.
- Give examples when relevant and step-by-step breakdowns for project explanations.
- Avoid generic explanations that could apply to many projects.

User Question: {{.Question}}

Answer this question comprehensively. If it asks how the project works, give a short explanation naming the specific technologies and workflows.
`))

// SummaryPrompt renders the prompt used when a repository is first analyzed.
func SummaryPrompt(in SummaryInput) string {
	var b strings.Builder
	// Execution cannot fail: the template only reads fields of a concrete struct.
	_ = summaryTemplate.Execute(&b, in)
	return b.String()
}

// QuestionPrompt renders the prompt for a question about a stored analysis.
func QuestionPrompt(repo *models.RepoAnalysis, readme, question string) string {
	var b strings.Builder
	_ = questionTemplate.Execute(&b, questionData{Repo: repo, Readme: readme, Question: question})
	return b.String()
}

// formatScore prints 85 as "85" and 72.5 as "72.5".
func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
