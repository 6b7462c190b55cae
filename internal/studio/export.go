package studio

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"

	"studio/internal/domain"
	"studio/pkg/zip"
)

// ErrNothingToExport is returned when a session holds no generated images
// with their payload still attached.
var ErrNothingToExport = errors.New("no images to export")

func decodeAttachment(att domain.Attachment) ([]byte, error) {
	if !att.Usable() {
		return nil, fmt.Errorf("%w: attachment has no payload", domain.ErrEncodingFailure)
	}
	data, err := base64.StdEncoding.DecodeString(att.EncodedData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEncodingFailure, err)
	}
	return data, nil
}

// Export zips every generated image of a session, oldest first.
func (s *Studio) Export(ctx context.Context, sessionID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var turns []domain.ChatTurn
	if sess, err := s.store.Session(sessionID); err == nil {
		turns = sess.Turns
	} else if sessionID == s.store.ActiveID() {
		turns = s.store.ActiveTurns()
	} else {
		return nil, err
	}

	var entries []zip.Entry
	for i, turn := range turns {
		if turn.Role != domain.RoleModel {
			continue
		}
		for _, att := range turn.Attachments {
			data, err := decodeAttachment(att)
			if err != nil {
				continue
			}
			entries = append(entries, zip.Entry{
				Name:     fmt.Sprintf("studio-%02d%s", i+1, extensionFor(att.MimeType)),
				MimeType: att.MimeType,
				Data:     data,
				Modified: turn.Timestamp,
			})
		}
	}
	if len(entries) == 0 {
		return nil, ErrNothingToExport
	}
	return zip.Archive(entries)
}

func extensionFor(mimeType string) string {
	if mimeType == "image/jpeg" {
		return ".jpg"
	}
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".png"
}
