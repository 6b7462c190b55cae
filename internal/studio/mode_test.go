package studio

import (
	"testing"

	"studio/internal/domain"
)

func historyWithImage() []domain.ChatTurn {
	return []domain.ChatTurn{
		{ID: "u1", Role: domain.RoleUser, Text: "a red sneaker on a podium"},
		{ID: "m1", Role: domain.RoleModel, Attachments: []domain.Attachment{{
			Kind:        domain.MediaKindImage,
			DisplayURL:  "data:image/png;base64,AAAA",
			EncodedData: "AAAA",
			MimeType:    "image/png",
		}}},
	}
}

func TestDecideMode(t *testing.T) {
	tests := []struct {
		name    string
		uploads int
		history []domain.ChatTurn
		text    string
		want    domain.RequestMode
	}{
		{name: "empty history", history: nil, text: "a red sneaker on a podium", want: domain.ModeGenerate},
		{name: "edit last image", history: historyWithImage(), text: "make the background blue", want: domain.ModeEdit},
		{name: "fresh intent override", history: historyWithImage(), text: "generate a brand new scene with a blue car", want: domain.ModeGenerate},
		{name: "upload only", uploads: 1, text: "", want: domain.ModeGenerateWithReference},
		{name: "upload wins over edit", uploads: 2, history: historyWithImage(), text: "make it pop", want: domain.ModeGenerateWithReference},
		{name: "start over", history: historyWithImage(), text: "let's start over", want: domain.ModeGenerate},
		{name: "make it", history: historyWithImage(), text: "make it brighter", want: domain.ModeEdit},
		{name: "create a", history: historyWithImage(), text: "create a flyer for my shop", want: domain.ModeGenerate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := DecideMode(tt.uploads, tt.history, tt.text)
			second := DecideMode(tt.uploads, tt.history, tt.text)
			if first.Mode != tt.want {
				t.Fatalf("mode = %s, want %s", first.Mode, tt.want)
			}
			if first.Mode != second.Mode || first.Base != second.Base {
				t.Fatalf("decision not stable: %+v vs %+v", first, second)
			}
		})
	}
}

func TestDecideModeEditBase(t *testing.T) {
	history := historyWithImage()
	history = append(history, domain.ChatTurn{ID: "u2", Role: domain.RoleUser, Text: "hmm"},
		domain.ChatTurn{ID: "m2", Role: domain.RoleModel, Text: "blocked"})

	d := DecideMode(0, history, "warmer light")
	if d.Mode != domain.ModeEdit {
		t.Fatalf("expected edit, got %s", d.Mode)
	}
	if d.Base.EncodedData != "AAAA" {
		t.Fatalf("expected base from the last model turn with an image, got %+v", d.Base)
	}
}

func TestDecideModeSkipsUnusableBase(t *testing.T) {
	history := historyWithImage()
	history[1].Attachments[0].EncodedData = ""
	if d := DecideMode(0, history, "make the background blue"); d.Mode != domain.ModeGenerate {
		t.Fatalf("expected generate when the last image has no payload, got %s", d.Mode)
	}
}

func TestIsFreshIntent(t *testing.T) {
	cases := map[string]bool{
		"generate a brand new scene": true,
		"Create a poster":            true,
		"draw me a cat":              true,
		"new idea please":            true,
		"make the background blue":   false,
		"render it in black":         false,
		"renew the colours":          false,
		"remake":                     false,
		"add a hat":                  false,
		"make":                       true,
	}
	for text, want := range cases {
		if got := IsFreshIntent(text); got != want {
			t.Fatalf("IsFreshIntent(%q) = %v, want %v", text, got, want)
		}
	}
}
