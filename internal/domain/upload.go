package domain

import "io"

// Opener returns a fresh reader over an uploaded file's raw bytes.
type Opener func() (io.ReadCloser, error)

// Upload is a user-supplied file that has not been encoded yet. It is encoded
// lazily at send time, in order.
type Upload struct {
	Name       string
	MimeType   string
	DisplayURL string
	Open       Opener
}

// Attachment returns the optimistic, not yet encoded attachment shown for the
// upload in the user's turn.
func (u Upload) Attachment() Attachment {
	return Attachment{
		Kind:       MediaKindImage,
		DisplayURL: u.DisplayURL,
		MimeType:   u.MimeType,
	}
}
