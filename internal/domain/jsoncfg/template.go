package jsoncfg

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TemplateJSON is the wire form of a template confirmation. Files travel as
// multipart parts next to it.
type TemplateJSON struct {
	Kind        string            `json:"kind"`
	Options     map[string]string `json:"options"`
	Surprise    bool              `json:"surprise"`
	AspectRatio string            `json:"aspect_ratio"`
	Resolution  string            `json:"resolution"`
}

// SendOptions are the optional generation parameters of a send.
type SendOptions struct {
	AspectRatio string `json:"aspect_ratio"`
	Resolution  string `json:"resolution"`
}

var allowedAspectRatios = map[string]struct{}{
	"1:1":  {},
	"3:4":  {},
	"4:3":  {},
	"9:16": {},
	"16:9": {},
	"21:9": {},
}

var allowedResolutions = map[string]struct{}{
	"1K": {},
	"2K": {},
	"4K": {},
}

// Normalize trims the payload and drops blank options.
func (t *TemplateJSON) Normalize() {
	if t == nil {
		return
	}
	t.Kind = strings.ToLower(strings.TrimSpace(t.Kind))
	options := make(map[string]string, len(t.Options))
	for k, v := range t.Options {
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		options[k] = v
	}
	t.Options = options
	t.AspectRatio = strings.TrimSpace(t.AspectRatio)
	t.Resolution = strings.ToUpper(strings.TrimSpace(t.Resolution))
}

// Validate checks the contract before the selection reaches the synthesizer.
// Option ids are validated by the synthesizer itself.
func (t TemplateJSON) Validate() error {
	if t.Kind == "" {
		return fmt.Errorf("kind is required")
	}
	return SendOptions{AspectRatio: t.AspectRatio, Resolution: t.Resolution}.Validate()
}

// Validate accepts empty values, which fall back to the studio defaults.
func (o SendOptions) Validate() error {
	if o.AspectRatio != "" {
		if _, ok := allowedAspectRatios[o.AspectRatio]; !ok {
			return fmt.Errorf("aspect_ratio must be one of 1:1, 3:4, 4:3, 9:16, 16:9, 21:9")
		}
	}
	if o.Resolution != "" {
		if _, ok := allowedResolutions[o.Resolution]; !ok {
			return fmt.Errorf("resolution must be one of 1K, 2K, 4K")
		}
	}
	return nil
}

// ParseTemplate decodes, normalizes and validates a template payload.
func ParseTemplate(raw []byte) (TemplateJSON, error) {
	var t TemplateJSON
	if len(strings.TrimSpace(string(raw))) == 0 {
		return t, fmt.Errorf("selection is required")
	}
	if err := json.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("selection: %w", err)
	}
	t.Normalize()
	return t, t.Validate()
}
