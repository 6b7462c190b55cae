package domain

import (
	"strings"
	"time"
)

// Role identifies the author of a chat turn.
type Role string

const (
	RoleUser   Role = "user"
	RoleModel  Role = "model"
	RoleSystem Role = "system"
)

// MediaKind enumerates attachment media types.
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
)

// Attachment is a media item carried by a turn. EncodedData holds the base64
// payload and must be populated before the attachment is used as a reference
// for the remote image service.
type Attachment struct {
	Kind        MediaKind `json:"kind"`
	DisplayURL  string    `json:"display_url"`
	EncodedData string    `json:"encoded_data"`
	MimeType    string    `json:"mime_type"`
}

// Usable reports whether the attachment can be sent to the image service.
func (a Attachment) Usable() bool {
	return a.EncodedData != ""
}

// ChatTurn is one exchange unit inside a session.
type ChatTurn struct {
	ID          string       `json:"id"`
	Role        Role         `json:"role"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}

// FirstAttachment returns the base attachment of the turn, if any.
func (t ChatTurn) FirstAttachment() (Attachment, bool) {
	if len(t.Attachments) == 0 {
		return Attachment{}, false
	}
	return t.Attachments[0], true
}

// CloneTurns copies turns and their attachment slices so callers can mutate
// the result without touching stored state.
func CloneTurns(turns []ChatTurn) []ChatTurn {
	if turns == nil {
		return nil
	}
	out := make([]ChatTurn, len(turns))
	for i, t := range turns {
		out[i] = t
		if t.Attachments != nil {
			out[i].Attachments = append([]Attachment(nil), t.Attachments...)
		}
	}
	return out
}

// IsImageMime reports whether the mime type denotes an image.
func IsImageMime(mime string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mime)), "image/")
}
