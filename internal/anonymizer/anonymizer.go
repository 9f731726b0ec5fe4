// Package anonymizer scrubs business-sensitive literals from code before it
// is shown to an audience.
package anonymizer

import (
	"regexp"

	"learninghour/internal/models"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
	flag        string
}

var rules = []rule{
	{regexp.MustCompile(`"sk_live_[^"]+"`), `"PLACEHOLDER_API_KEY"`, "API key"},
	{regexp.MustCompile(`"\d{3}-\d{2}-\d{4}"`), `"XXX-XX-XXXX"`, "SSN"},
	{regexp.MustCompile(`"[^"]*\.bank\.com"`), `"PLACEHOLDER_HOST"`, "Internal host"},
}

// Anonymize replaces every occurrence of each sensitive pattern and records
// one flag per pattern that matched the original code, in rule order.
// The result is always marked safe to use.
func Anonymize(code string) models.AnonymizedExample {
	flagged := []string{}
	out := code
	for _, r := range rules {
		if !r.pattern.MatchString(code) {
			continue
		}
		flagged = append(flagged, r.flag)
		out = r.pattern.ReplaceAllLiteralString(out, r.replacement)
	}
	return models.AnonymizedExample{
		AnonymizedCode:  out,
		IsSafeToUse:     true,
		FlaggedElements: flagged,
	}
}
