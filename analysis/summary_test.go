package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"codedrip/github"
	"codedrip/models"
)

func languages(pairs ...any) *github.Languages {
	l := github.NewLanguages()
	for i := 0; i < len(pairs); i += 2 {
		l.Set(pairs[i].(string), int64(pairs[i+1].(int)))
	}
	return l
}

func TestLanguageShares(t *testing.T) {
	tests := []struct {
		name  string
		input *github.Languages
		want  []models.LanguageShare
	}{
		{
			name:  "two languages",
			input: languages("Go", 300, "JS", 100),
			want:  []models.LanguageShare{{Language: "Go", Percentage: 75}, {Language: "JS", Percentage: 25}},
		},
		{
			name:  "keeps input order",
			input: languages("JS", 100, "Go", 300),
			want:  []models.LanguageShare{{Language: "JS", Percentage: 25}, {Language: "Go", Percentage: 75}},
		},
		{
			name:  "two decimal rounding",
			input: languages("Go", 1, "C", 1, "Rust", 1),
			want: []models.LanguageShare{
				{Language: "Go", Percentage: 33.33},
				{Language: "C", Percentage: 33.33},
				{Language: "Rust", Percentage: 33.33},
			},
		},
		{
			name:  "zero bytes",
			input: languages("Go", 0),
			want:  []models.LanguageShare{{Language: "Go", Percentage: 0}},
		},
		{name: "empty", input: languages(), want: []models.LanguageShare{}},
		{name: "nil", input: nil, want: []models.LanguageShare{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LanguageShares(tt.input))
		})
	}
}

func TestTopContributors(t *testing.T) {
	input := make([]github.ContributorResponse, 12)
	for i := range input {
		input[i] = github.ContributorResponse{
			Login:         string(rune('a' + i)),
			Contributions: 50 - i,
			AvatarURL:     "https://avatars.example/" + string(rune('a'+i)),
			HTMLURL:       "https://github.com/" + string(rune('a'+i)),
		}
	}

	top := TopContributors(input, MaxTopContributors)
	assert.Len(t, top, 10)
	assert.Equal(t, models.Contributor{
		Login:         "a",
		Contributions: 50,
		AvatarURL:     "https://avatars.example/a",
		ProfileURL:    "https://github.com/a",
	}, top[0])
	assert.Equal(t, "j", top[9].Login)

	assert.Len(t, TopContributors(input[:3], MaxTopContributors), 3)
	assert.Empty(t, TopContributors(nil, MaxTopContributors))
}
