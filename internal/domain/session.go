package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	sessionTitleLimit   = 30
	DefaultSessionTitle = "New Project"
)

// Session is a titled, ordered list of turns.
type Session struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	LastActivity time.Time  `json:"last_activity"`
	Turns        []ChatTurn `json:"turns"`
}

// SessionSummary is the sidebar view of a session.
type SessionSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	LastActivity time.Time `json:"last_activity"`
	TurnCount    int       `json:"turn_count"`
}

// Summary returns the list view of the session.
func (s Session) Summary() SessionSummary {
	return SessionSummary{ID: s.ID, Title: s.Title, LastActivity: s.LastActivity, TurnCount: len(s.Turns)}
}

// SessionTitle derives a title from the first user text of a session.
func SessionTitle(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return DefaultSessionTitle
	}
	if utf8.RuneCountInString(text) <= sessionTitleLimit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:sessionTitleLimit]))
}
