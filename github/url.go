package github

import (
	"strings"

	"codedrip/models"
)

var urlPrefixes = []string{"https://", "http://", "git@github.com:", "www.", "github.com/"}

// ParseURL extracts the owner and repository name from a GitHub URL such as
// https://github.com/acme/widget.git.
func ParseURL(gitURL string) (owner, repo string, err error) {
	rest := strings.TrimSpace(gitURL)
	for _, prefix := range urlPrefixes {
		rest = strings.TrimPrefix(rest, prefix)
	}
	rest = strings.Trim(rest, "/")

	parts := strings.Split(rest, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", models.NewInputError("Invalid GitHub URL format")
	}

	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}
