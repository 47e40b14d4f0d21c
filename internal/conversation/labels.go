package conversation

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Terminal labels assigned to a conversation when it closes.
const (
	LabelResolved         = "resolved"
	LabelEscalatedWebsite = "escalated_website"
	LabelEscalatedHuman   = "escalated_human"
)

var (
	phoneRe = regexp.MustCompile(`\+?\d[\d\s\-()]{6,}`)

	// The SMS pattern is checked before the human-escalation pattern, so a
	// reply mentioning both lands on escalated_website.
	smsVocabRe   = regexp.MustCompile(`\bsms\b|text message|web form|form link`)
	agentVocabRe = regexp.MustCompile(`\bagent\b|\boperator\b|\btransfer\b|human representative`)
)

// ExtractPhone returns the first phone-number-looking token in text, or "".
func ExtractPhone(text string) string {
	m := phoneRe.FindString(text)
	return strings.TrimSpace(m)
}

// DeriveLabel classifies the closing message of a conversation. Matching is
// rule-based over the diacritic-stripped, lower-cased text.
func DeriveLabel(lastMessage string) string {
	normalized := normalizeText(lastMessage)
	switch {
	case smsVocabRe.MatchString(normalized):
		return LabelEscalatedWebsite
	case agentVocabRe.MatchString(normalized):
		return LabelEscalatedHuman
	default:
		return LabelResolved
	}
}

var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func normalizeText(s string) string {
	stripped, _, err := transform.String(stripDiacritics, s)
	if err != nil {
		stripped = s
	}
	return strings.ToLower(stripped)
}
