// Package policy scans transcripts for regulatory trigger phrases. Flags are
// coarse booleans: the detector reports which tags matched, never where.
package policy

import "strings"

// FlagMandatoryDisclosure marks a transcript that may require a mandatory
// disclosure report to the public-health authority.
const FlagMandatoryDisclosure = "mandatory-disclosure-candidate"

// triggerVocabulary maps each flag to its bilingual keyword list. Trigger
// phrases are clinical terms, not identifiers, so redaction placeholders never
// remove them; the detector works on either raw or redacted text.
var triggerVocabulary = []struct {
	Flag     string
	Keywords []string
}{
	{
		Flag: FlagMandatoryDisclosure,
		Keywords: []string{
			"agression sexuelle",
			"viol",
			"abuse",
			"rape",
			"sexual assault",
			"child abuse",
		},
	},
}

// DetectFlags returns the distinct flag tags whose vocabulary matched at
// least once, in fixed vocabulary order. Matching is case-insensitive
// substring search; the empty result is the common case.
func DetectFlags(text string) []string {
	lower := strings.ToLower(text)

	var flags []string
	for _, entry := range triggerVocabulary {
		for _, kw := range entry.Keywords {
			if strings.Contains(lower, kw) {
				flags = append(flags, entry.Flag)
				break
			}
		}
	}
	return flags
}
