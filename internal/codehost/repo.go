package codehost

import (
	"regexp"

	"learninghour/internal/errdefs"
)

// Repo identifies a repository on the code host.
type Repo struct {
	Owner string
	Name  string
}

// FullName returns "owner/name".
func (r Repo) FullName() string {
	return r.Owner + "/" + r.Name
}

// Accepts host/owner/repo and host:owner/repo with an optional scheme, user,
// .git suffix and trailing path, e.g. https://github.com/o/r/tree/main or
// git@github.com:o/r.git.
var repoURLRe = regexp.MustCompile(`^(?:[A-Za-z][A-Za-z0-9+.-]*://)?(?:[^@/\s]+@)?(?:[A-Za-z0-9-]+(?:\.[A-Za-z0-9-]+)+|localhost)[/:]([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+?)(?:\.git)?(?:[/?#].*)?$`)

// ParseRepoURL extracts owner and repository name from a repository URL.
// It never touches the network.
func ParseRepoURL(raw string) (Repo, error) {
	m := repoURLRe.FindStringSubmatch(raw)
	if m == nil || isDots(m[1]) || isDots(m[2]) {
		return Repo{}, errdefs.InvalidInput("invalid repository URL format: %q (expected host/owner/repo or host:owner/repo)", raw)
	}
	return Repo{Owner: m[1], Name: m[2]}, nil
}

func isDots(s string) bool {
	for _, r := range s {
		if r != '.' {
			return false
		}
	}
	return true
}
