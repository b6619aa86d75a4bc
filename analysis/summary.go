package analysis

import (
	"codedrip/github"
	"codedrip/models"
)

// MaxTopContributors is the number of contributors kept on an analysis.
const MaxTopContributors = 10

// LanguageShares converts byte counts into percentages of the total, rounded to
// two decimals, in the order of the input map.
func LanguageShares(languages *github.Languages) []models.LanguageShare {
	shares := []models.LanguageShare{}
	if languages == nil {
		return shares
	}

	var total int64
	for pair := languages.Oldest(); pair != nil; pair = pair.Next() {
		total += pair.Value
	}

	for pair := languages.Oldest(); pair != nil; pair = pair.Next() {
		pct := 0.0
		if total > 0 {
			pct = round(float64(pair.Value)/float64(total)*100, 2)
		}
		shares = append(shares, models.LanguageShare{Language: pair.Key, Percentage: pct})
	}
	return shares
}

// TopContributors keeps the first n contributors; GitHub already orders them by contributions.
func TopContributors(contributors []github.ContributorResponse, n int) []models.Contributor {
	if len(contributors) < n {
		n = len(contributors)
	}
	top := make([]models.Contributor, 0, n)
	for _, c := range contributors[:n] {
		top = append(top, models.Contributor{
			Login:         c.Login,
			Contributions: c.Contributions,
			AvatarURL:     c.AvatarURL,
			ProfileURL:    c.HTMLURL,
		})
	}
	return top
}
