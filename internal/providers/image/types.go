package image

import (
	"context"
	"strings"

	"studio/internal/domain"
)

// GenerateRequest asks for a new image. Text is wrapped by the free-text
// synthesizer before it is sent; References go first in the payload, in
// order.
type GenerateRequest struct {
	Text        string
	Brand       *domain.BrandProfile
	AspectRatio domain.ImageAspectRatio
	Resolution  domain.ImageResolution
	References  []domain.Attachment
}

// EditRequest asks for a change to an existing image.
type EditRequest struct {
	Base        domain.Attachment
	Text        string
	AspectRatio domain.ImageAspectRatio
	Resolution  domain.ImageResolution
}

// AssistRequest is a text-only command for the studio assistant.
type AssistRequest struct {
	Text   string
	Images []domain.Attachment
}

// Result carries at most one image and optional feedback text.
type Result struct {
	Image    string // data URI, empty when no image was produced
	MimeType string
	Data     string // base64 payload of Image
	Feedback string
}

// HasImage reports whether the call produced an image.
func (r Result) HasImage() bool {
	return r.Data != ""
}

// Attachment converts the produced image into a model-turn attachment.
func (r Result) Attachment() domain.Attachment {
	return domain.Attachment{
		Kind:        domain.MediaKindImage,
		DisplayURL:  r.Image,
		EncodedData: r.Data,
		MimeType:    r.MimeType,
	}
}

// Generator is the contract implemented by all image providers.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (Result, error)
	Edit(ctx context.Context, req EditRequest) (Result, error)
}

// Assistant answers text commands that do not produce an image.
type Assistant interface {
	Assist(ctx context.Context, req AssistRequest) (string, error)
}

// AssistantSystemInstruction keeps the assistant operational rather than
// conversational.
const AssistantSystemInstruction = `ROLE: Studio Command Interface.
STRICT MODE: DO NOT CHAT. DO NOT TELL STORIES. NO PHILOSOPHY.
TASK: The user is trying to generate or edit images.

If the user's input is a number (e.g. "Five") or ambiguous:
1. Assume they want to generate or edit an image with that quantity or subject.
2. If you cannot generate, ask for a visual description briefly.

Example input: "Five"
Example output: "Please describe what you want 5 of. E.g. '5 perfume bottles'."

DO NOT output narratives, visions, or creative writing.
Keep responses robotic, concise, and operational.`

// EditInstruction frames a verbatim edit request for the photo-editor role.
func EditInstruction(text string, res domain.ImageResolution) string {
	if res == "" {
		res = domain.Resolution2K
	}
	lines := []string{
		"ROLE: Expert Photo Editor & Retoucher.",
		`TASK: Edit the attached image according to this instruction: "` + text + `".`,
		"",
		"STRICT CONSISTENCY RULES:",
		"1. PRESERVE THE IMAGE: Do not change the model's face, the product details, or the scene composition unless explicitly asked.",
		`2. ISOLATION: If asked to "change the background", ONLY change the background. Keep the foreground subject identical.`,
		"3. NO HALLUCINATIONS: Do not add random objects, change the lighting style, or alter the camera angle unless requested.",
		"4. INTERIORS: If this is a room, do not move walls or windows. Only add or remove furniture if asked.",
		"5. NO HUMANS: If the image does not currently have a human, do NOT add one unless asked.",
		"",
		"EXECUTION:",
		"- Perform the edit with pixel-perfect precision.",
		"- Maintain " + string(res) + " photorealism.",
		"- Do exactly what was asked, nothing more, nothing less.",
	}
	return strings.Join(lines, "\n")
}
