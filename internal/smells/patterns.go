// Package smells maps code smell names to code-host search queries and to
// regular expressions that locate the smell inside a single file, and scores
// the snippets those expressions match.
package smells

import (
	"regexp"
	"strings"

	"learninghour/internal/utils"
)

// Entry is the lookup-table row for one smell.
type Entry struct {
	Name     string
	Queries  []string
	Patterns []*regexp.Regexp
}

// Known smell names.
const (
	FeatureEnvy        = "Feature Envy"
	LongMethod         = "Long Method"
	GodClass           = "God Class"
	PrimitiveObsession = "Primitive Obsession"
	LongParameterList  = "Long Parameter List"
	SwitchStatements   = "Switch Statements"
)

var table = buildTable([]struct {
	name     string
	queries  []string
	patterns []string
}{
	{
		name:    FeatureEnvy,
		queries: []string{"get().get", "getCustomer().get", "getAccount().get"},
		patterns: []string{
			`\w+\.get\w*\(\)\.get\w*\(\)`,
			`\w+\.\w+\(\)\.\w+\(\)\.\w+\(`,
			`\w+\.\w+\(\)\.\w+\(`,
		},
	},
	{
		name:    LongMethod,
		queries: []string{"public void", "function", "def "},
		patterns: []string{
			`(?m)^[ \t]*(?:public|private|protected|static)[^\n(]*\([^\n]*\)[^\n]*\{[ \t]*\n(?:[^\n]*\n){30,}?[ \t]*\}`,
			`(?m)^[ \t]*(?:func|function|async function)\b[^\n]*\{[ \t]*\n(?:[^\n]*\n){30,}?[ \t]*\}`,
			`(?m)^[ \t]*def [A-Za-z_]\w*\([^\n]*\)[^\n]*:[ \t]*\n(?:(?:[ \t]+[^\n]*)?\n){30,}`,
		},
	},
	{
		name:    GodClass,
		queries: []string{"class Manager", "class Service", "class Controller"},
		patterns: []string{
			`\bclass\s+\w*(?:Manager|Handler|Controller)\b`,
			`\bclass\s+\w*(?:Service|Processor|Helper|Utils?)\b`,
			`(?m)^[ \t]*(?:export\s+)?(?:public\s+)?(?:class\s+\w+|type\s+\w+\s+struct)`,
		},
	},
	{
		name:    PrimitiveObsession,
		queries: []string{"String email", "String phoneNumber", "int zipCode"},
		patterns: []string{
			`(?i)\b(?:String|string|str)\s+\w*(?:email|phone|zip|postal|currency|ssn)\w*`,
			`(?i)\b\w*(?:email|phone|zip|postal|currency)\w*\s*:\s*(?:string|str)\b`,
			`(?i)\b(?:int|long|double|float|float64|int64)\s+\w*(?:amount|price|money|cents)\w*`,
		},
	},
	{
		name:    LongParameterList,
		queries: []string{"String firstName, String lastName", "function create(", "def __init__(self,"},
		patterns: []string{
			`\w+\s*\((?:[^,()\n]+,){4,}[^,()\n]+\)\s*\{`,
			`\bdef\s+\w+\((?:[^,()\n]+,){4,}[^,()\n]+\)\s*:`,
			`\bfunc\s+(?:\([^)]*\)\s*)?\w+\((?:[^,()\n]+,){4,}[^,()\n]+\)`,
		},
	},
	{
		name:    SwitchStatements,
		queries: []string{"switch (type)", "case TYPE_", "instanceof"},
		patterns: []string{
			`\bswitch\s*\(\s*\w*(?:[Tt]ype|[Kk]ind)\w*\s*\)`,
			`(?s)\bswitch\b[^{]*\{(?:[^{}]*\bcase\b){4,}`,
			`\binstanceof\s+\w+[^\n]*\n[^\n]*\belse\s+if\b[^\n]*\binstanceof\b`,
		},
	},
})

func buildTable(rows []struct {
	name     string
	queries  []string
	patterns []string
}) map[string]Entry {
	out := make(map[string]Entry, len(rows))
	for _, row := range rows {
		compiled := make([]*regexp.Regexp, 0, len(row.patterns))
		for _, p := range row.patterns {
			compiled = append(compiled, regexp.MustCompile(p))
		}
		out[utils.NormalizeName(row.name)] = Entry{
			Name:     row.name,
			Queries:  row.queries,
			Patterns: compiled,
		}
	}
	return out
}

// Lookup returns the table entry for name, matching case- and
// whitespace-insensitively, or a synthesized fallback entry.
func Lookup(name string) Entry {
	if entry, ok := table[utils.NormalizeName(name)]; ok {
		return entry
	}
	return fallback(name)
}

// IsKnown reports whether name has an explicit table entry.
func IsKnown(name string) bool {
	_, ok := table[utils.NormalizeName(name)]
	return ok
}

// Queries returns the ordered code-host search strings for name.
func Queries(name string) []string {
	return Lookup(name).Queries
}

// Patterns returns the ordered expressions that locate name in a file.
func Patterns(name string) []*regexp.Regexp {
	return Lookup(name).Patterns
}

// KnownSmells lists the table's smell names.
func KnownSmells() []string {
	return []string{FeatureEnvy, LongMethod, GodClass, PrimitiveObsession, LongParameterList, SwitchStatements}
}

// fallback builds one query and one pattern from the name's lowercase tokens:
// "Data  Clumps" yields query "data clumps" and pattern (?i)data.*clumps.
func fallback(name string) Entry {
	tokens := strings.Fields(strings.ToLower(name))
	if len(tokens) == 0 {
		tokens = []string{name}
	}
	quoted := make([]string, len(tokens))
	for i, tok := range tokens {
		quoted[i] = regexp.QuoteMeta(tok)
	}
	return Entry{
		Name:     name,
		Queries:  []string{strings.Join(tokens, " ")},
		Patterns: []*regexp.Regexp{regexp.MustCompile(`(?i)` + strings.Join(quoted, ".*"))},
	}
}

// Match is the first pattern hit inside a file.
type Match struct {
	Start   int
	End     int
	Text    string
	Pattern *regexp.Regexp
}

// FindMatch evaluates patterns in order and returns the first match of the
// first pattern that matches at all. It does not look for a better match in
// later patterns.
func FindMatch(content string, patterns []*regexp.Regexp) (Match, bool) {
	for _, re := range patterns {
		loc := re.FindStringIndex(content)
		if loc == nil {
			continue
		}
		return Match{
			Start:   loc[0],
			End:     loc[1],
			Text:    content[loc[0]:loc[1]],
			Pattern: re,
		}, true
	}
	return Match{}, false
}

// LineSpan converts a byte span into 1-based start/end line numbers. The end
// line is the line holding the last byte of the span.
func LineSpan(content string, start, end int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end > len(content) {
		end = len(content)
	}
	if end < start {
		end = start
	}
	first := strings.Count(content[:start], "\n") + 1
	last := first + strings.Count(content[start:end], "\n")
	if end > start && content[end-1] == '\n' {
		last--
	}
	return first, last
}

// LineText widens a byte span to the full lines it touches, without the
// trailing newline.
func LineText(content string, start, end int) string {
	start = max(0, min(start, len(content)))
	end = max(start, min(end, len(content)))
	from := strings.LastIndexByte(content[:start], '\n') + 1
	to := len(content)
	if i := strings.IndexByte(content[end:], '\n'); i >= 0 {
		to = end + i
	}
	if end > start && content[end-1] == '\n' {
		to = end - 1
	}
	return content[from:to]
}
