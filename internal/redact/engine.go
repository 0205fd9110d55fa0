// Package redact rewrites sensitive substrings of a transcript to category
// placeholders while keeping a match log that never contains the original
// text. Match identifiers are content-addressed so repeated values correlate
// across audit trails without storing the value itself.
package redact

import (
	"encoding/hex"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Match records one accepted redaction. Start and Length refer to the
// original, unmodified text.
type Match struct {
	ID          string   `json:"id"`
	Category    Category `json:"category"`
	Start       int      `json:"start"`
	Length      int      `json:"length"`
	Placeholder string   `json:"placeholder"`
}

// Result pairs the rewritten text with the match log, ordered left to right
// in the original text. Accepted spans never overlap.
type Result struct {
	Text    string
	Matches []Match
}

type candidate struct {
	category Category
	priority int
	start    int
	end      int
}

// Redact scans the original text for every category pattern, resolves
// overlaps deterministically, and applies placeholders in ascending original
// offset order.
//
// All candidates are collected against the unmodified input first; overlaps
// are then resolved by sorting on (start, category priority) and rejecting
// any match that begins before the previously accepted match ends. This keeps
// the outcome independent of category iteration order.
func Redact(text string) Result {
	var candidates []candidate
	for prio, cp := range categoryPatterns {
		for _, span := range cp.Pattern.FindAllStringIndex(text, -1) {
			candidates = append(candidates, candidate{
				category: cp.Category,
				priority: prio,
				start:    span[0],
				end:      span[1],
			})
		}
	}
	if len(candidates) == 0 {
		return Result{Text: text}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].start != candidates[j].start {
			return candidates[i].start < candidates[j].start
		}
		return candidates[i].priority < candidates[j].priority
	})

	var (
		b       strings.Builder
		matches []Match
		cursor  int
	)
	for _, c := range candidates {
		if c.start < cursor {
			// First-writer-wins: span already covered by an accepted match.
			continue
		}
		matched := text[c.start:c.end]
		placeholder := placeholderFor(c.category)

		b.WriteString(text[cursor:c.start])
		b.WriteString(placeholder)
		cursor = c.end

		matches = append(matches, Match{
			ID:          StableID(c.category, matched),
			Category:    c.category,
			Start:       c.start,
			Length:      c.end - c.start,
			Placeholder: placeholder,
		})
	}
	b.WriteString(text[cursor:])

	return Result{Text: b.String(), Matches: matches}
}

// StableID derives a deterministic identifier from the category and the exact
// matched substring (RFC 4122 v5 over the URL namespace). Identical sensitive
// values always produce the same identifier; the value itself is never stored.
func StableID(category Category, matched string) string {
	u := uuid.NewSHA1(uuid.NameSpaceURL, []byte(string(category)+":"+matched))
	return hex.EncodeToString(u[:])
}

func placeholderFor(category Category) string {
	return "[REDACTED_" + strings.ToUpper(string(category)) + "]"
}
