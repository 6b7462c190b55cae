package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"studio/internal/domain"
)

const uploadURLPrefix = "upload://"

// parseForm accepts multipart or urlencoded bodies within the upload limit.
func (a *App) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		return r.ParseMultipartForm(a.MaxUploadBytes)
	}
	return r.ParseForm()
}

// formUploads collects the image files of a multipart field in order.
// Files that do not declare an image type are skipped.
func formUploads(r *http.Request, field string) []domain.Upload {
	if r.MultipartForm == nil {
		return nil
	}
	var out []domain.Upload
	for _, fh := range r.MultipartForm.File[field] {
		mime := fh.Header.Get("Content-Type")
		if !domain.IsImageMime(mime) {
			continue
		}
		out = append(out, uploadFromHeader(fh, mime))
	}
	return out
}

// formUpload returns the first image file of a field, if any.
func formUpload(r *http.Request, field string) *domain.Upload {
	uploads := formUploads(r, field)
	if len(uploads) == 0 {
		return nil
	}
	return &uploads[0]
}

func uploadFromHeader(fh *multipart.FileHeader, mime string) domain.Upload {
	return domain.Upload{
		Name:       fh.Filename,
		MimeType:   mime,
		DisplayURL: uploadURLPrefix + fh.Filename,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
