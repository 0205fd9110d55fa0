package redact

import "regexp"

// Category labels one kind of sensitive substring.
type Category string

const (
	CategoryEmail Category = "email"
	CategoryPhone Category = "phone"
	CategoryMRN   Category = "mrn"
	CategoryDate  Category = "date"
)

// categoryPatterns defines the detection regex per category. Order is the
// fixed priority order: when two categories match the same span, the earlier
// entry wins.
//
// Placeholders must never re-match any of these patterns, otherwise redaction
// stops being idempotent.
var categoryPatterns = []struct {
	Category Category
	Pattern  *regexp.Regexp
}{
	{CategoryEmail, regexp.MustCompile(`[a-zA-Z0-9.\-+_]+@[a-zA-Z0-9.\-+_]+\.[a-zA-Z]{2,}`)},
	{CategoryPhone, regexp.MustCompile(`(?:(?:\+?\d{1,3})?[\s\-.])?(?:\(?\d{3}\)?[\s\-.]?)?\d{3}[\s\-.]?\d{4}`)},
	{CategoryMRN, regexp.MustCompile(`(?i)\b(?:MRN|Dossier|#)\s*[:#]?\s*\w+\b`)},
	{CategoryDate, regexp.MustCompile(`\b(?:\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}|\d{4}-\d{2}-\d{2})\b`)},
}
