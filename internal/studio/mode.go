package studio

import (
	"regexp"
	"strings"

	"studio/internal/domain"
)

var (
	freshPhrasePattern = regexp.MustCompile(`\b(new|start over|brand new)\b`)
	freshVerbPattern   = regexp.MustCompile(`\b(generate|create|make|draw|render)\b(?:\s+([a-z']+))?`)
)

// definite objects point back at the current image ("make it brighter",
// "make the background blue"), so the verb alone does not start over.
var definiteObjects = map[string]bool{
	"the": true, "it": true, "it's": true, "its": true, "this": true, "that": true,
	"these": true, "those": true, "them": true, "her": true, "his": true, "their": true,
}

// IsFreshIntent reports whether the text asks for a new image rather than a
// change to the last one.
func IsFreshIntent(text string) bool {
	lower := strings.ToLower(text)
	if freshPhrasePattern.MatchString(lower) {
		return true
	}
	for _, m := range freshVerbPattern.FindAllStringSubmatch(lower, -1) {
		if !definiteObjects[m[2]] {
			return true
		}
	}
	return false
}

// LastModelImage returns the first attachment of the most recent model turn
// that has attachments.
func LastModelImage(history []domain.ChatTurn) (domain.Attachment, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		turn := history[i]
		if turn.Role != domain.RoleModel {
			continue
		}
		if att, ok := turn.FirstAttachment(); ok {
			return att, true
		}
	}
	return domain.Attachment{}, false
}

// Decision is the outcome of DecideMode. Base is set only for edits.
type Decision struct {
	Mode domain.RequestMode
	Base domain.Attachment
}

// DecideMode picks the request mode for one send. It is a pure function of
// its inputs.
func DecideMode(uploads int, history []domain.ChatTurn, text string) Decision {
	if uploads > 0 {
		return Decision{Mode: domain.ModeGenerateWithReference}
	}
	if base, ok := LastModelImage(history); ok && base.Usable() && !IsFreshIntent(text) {
		return Decision{Mode: domain.ModeEdit, Base: base}
	}
	return Decision{Mode: domain.ModeGenerate}
}
