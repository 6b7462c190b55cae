package studio

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"

	"studio/internal/domain"
)

// maxUploadBytes bounds a single reference image.
const maxUploadBytes = 20 << 20

var errCancelled = errors.New("send cancelled")

// encodeUploads reads and base64-encodes uploads one at a time, in order,
// checking the token before each one.
func encodeUploads(uploads []domain.Upload, token *CancelToken) ([]domain.Attachment, error) {
	out := make([]domain.Attachment, 0, len(uploads))
	for i, u := range uploads {
		if token.Cancelled() {
			return nil, errCancelled
		}
		att, err := encodeUpload(u)
		if err != nil {
			return nil, fmt.Errorf("%w: upload %d (%s): %v", domain.ErrEncodingFailure, i, u.Name, err)
		}
		out = append(out, att)
	}
	return out, nil
}

func encodeUpload(u domain.Upload) (domain.Attachment, error) {
	if u.Open == nil {
		return domain.Attachment{}, errors.New("no content")
	}
	rc, err := u.Open()
	if err != nil {
		return domain.Attachment{}, err
	}
	defer rc.Close()

	raw, err := io.ReadAll(io.LimitReader(rc, maxUploadBytes+1))
	if err != nil {
		return domain.Attachment{}, err
	}
	if len(raw) == 0 {
		return domain.Attachment{}, errors.New("empty file")
	}
	if len(raw) > maxUploadBytes {
		return domain.Attachment{}, errors.New("file too large")
	}

	att := u.Attachment()
	if att.MimeType == "" {
		att.MimeType = http.DetectContentType(raw)
	}
	att.EncodedData = base64.StdEncoding.EncodeToString(raw)
	return att, nil
}
