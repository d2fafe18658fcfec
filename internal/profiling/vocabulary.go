package profiling

import "strings"

// Vocabulary is a case-insensitive substring matcher over column names.
// It is a naming heuristic: a column called "Cost Center" matches "cost"
// although it holds labels, and a revenue column named "Turnover" does not.
type Vocabulary struct {
	keywords []string
}

// NewVocabulary builds a matcher; keywords are lowercased and blanks dropped
func NewVocabulary(keywords []string) Vocabulary {
	v := Vocabulary{keywords: make([]string, 0, len(keywords))}
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			v.keywords = append(v.keywords, k)
		}
	}
	return v
}

// Match returns the first keyword contained in name
func (v Vocabulary) Match(name string) (string, bool) {
	lower := strings.ToLower(name)
	for _, k := range v.keywords {
		if strings.Contains(lower, k) {
			return k, true
		}
	}
	return "", false
}

// Matches reports whether name contains any keyword
func (v Vocabulary) Matches(name string) bool {
	_, ok := v.Match(name)
	return ok
}
