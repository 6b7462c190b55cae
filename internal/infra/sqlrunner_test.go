package infra

import (
	"errors"
	"testing"
)

func TestExtractMarker(t *testing.T) {
	marker, body, err := extractMarker("\n--sql 2567e506-e1fa-4477-b0f8-4a80ac53e246\nselect 1;\n")
	if err != nil {
		t.Fatalf("extractMarker: %v", err)
	}
	if marker != "2567e506-e1fa-4477-b0f8-4a80ac53e246" {
		t.Fatalf("marker = %q", marker)
	}
	if body != "select 1;" {
		t.Fatalf("body = %q", body)
	}
}

func TestExtractMarkerRejectsUnmarkedQueries(t *testing.T) {
	for _, q := range []string{"", "select 1;", "--sql not-a-uuid\nselect 1;"} {
		if _, _, err := extractMarker(q); !errors.Is(err, errMissingMarker) {
			t.Fatalf("extractMarker(%q) err = %v", q, err)
		}
	}
}
