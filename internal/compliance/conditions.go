package compliance

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

//go:embed conditions.json
var conditionsJSON []byte

// Condition is one entry of the reportable-condition registry. Labels and
// trigger keywords are bilingual; the registry order fixes candidate
// precedence.
type Condition struct {
	Code     string              `json:"code"`
	Label    map[string]string   `json:"label"`
	Keywords map[string][]string `json:"keywords"`
}

// LabelFor returns the condition label in the requested language, falling
// back to English.
func (c Condition) LabelFor(language string) string {
	if label, ok := c.Label[language]; ok {
		return label
	}
	return c.Label["en"]
}

func loadConditions() ([]Condition, error) {
	var conditions []Condition
	if err := json.Unmarshal(conditionsJSON, &conditions); err != nil {
		return nil, fmt.Errorf("parse embedded condition registry: %w", err)
	}
	return conditions, nil
}

// findCandidate matches transcript text against the registry keywords with
// word boundaries, case-insensitively. The first registry entry with any
// matching keyword wins; later entries are not consulted. English keywords
// are always searched in addition to the requested language.
func findCandidate(conditions []Condition, transcript, language string) *Condition {
	text := strings.ToLower(transcript)
	for i := range conditions {
		keywords := append([]string{}, conditions[i].Keywords[language]...)
		if language != "en" {
			keywords = append(keywords, conditions[i].Keywords["en"]...)
		}
		for _, kw := range keywords {
			pattern := `\b` + regexp.QuoteMeta(strings.ToLower(kw)) + `\b`
			if matched, _ := regexp.MatchString(pattern, text); matched {
				return &conditions[i]
			}
		}
	}
	return nil
}
