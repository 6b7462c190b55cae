package main

import (
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"studio/internal/domain"
)

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stdout")
}

func cliLogLevel() zerolog.Level {
	if verbose {
		return zerolog.DebugLevel
	}
	return zerolog.WarnLevel
}

// fileUpload reads an image from disk lazily, like a browser file handle.
func fileUpload(path string) domain.Upload {
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return domain.Upload{
		Name:       filepath.Base(path),
		MimeType:   mimeType,
		DisplayURL: "file://" + path,
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

func fileUploads(paths []string) []domain.Upload {
	out := make([]domain.Upload, 0, len(paths))
	for _, p := range paths {
		out = append(out, fileUpload(p))
	}
	return out
}

func optionalUpload(path string) *domain.Upload {
	if path == "" {
		return nil
	}
	u := fileUpload(path)
	return &u
}
