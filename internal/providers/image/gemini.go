package image

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/prompt"
	"studio/internal/providers/genai"
	"studio/internal/retry"
)

// GeminiGenerator synthesizes the final instruction and calls Gemini through
// the retry policy.
type GeminiGenerator struct {
	client *genai.Client
	synth  *prompt.Synthesizer
	policy retry.Policy
	logger *infra.Logger
}

// NewGeminiGenerator wires a client, synthesizer and retry policy together.
func NewGeminiGenerator(client *genai.Client, synth *prompt.Synthesizer, policy retry.Policy, logger *infra.Logger) *GeminiGenerator {
	if synth == nil {
		synth = prompt.NewSynthesizer(nil)
	}
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	if policy.Logger == nil {
		policy.Logger = logger
	}
	return &GeminiGenerator{client: client, synth: synth, policy: policy, logger: logger}
}

func (g *GeminiGenerator) Generate(ctx context.Context, req GenerateRequest) (Result, error) {
	images, err := inlineImages(req.References)
	if err != nil {
		return Result{}, err
	}
	res := resolution(req.Resolution)
	instruction := g.synth.FromText(prompt.TextInput{Text: req.Text, Brand: req.Brand, Resolution: res})

	out, err := retry.Do(ctx, g.policy, func(ctx context.Context) (genai.Result, error) {
		return g.client.GenerateImage(ctx, genai.ImageRequest{
			Images:      images,
			Text:        instruction,
			AspectRatio: string(aspect(req.AspectRatio)),
			ImageSize:   string(res),
		})
	})
	if err != nil {
		return Result{}, fmt.Errorf("generate image: %w", err)
	}
	return fromGenai(out), nil
}

func (g *GeminiGenerator) Edit(ctx context.Context, req EditRequest) (Result, error) {
	images, err := inlineImages([]domain.Attachment{req.Base})
	if err != nil {
		return Result{}, err
	}
	res := resolution(req.Resolution)
	instruction := EditInstruction(req.Text, res)

	out, err := retry.Do(ctx, g.policy, func(ctx context.Context) (genai.Result, error) {
		return g.client.GenerateImage(ctx, genai.ImageRequest{
			Images:      images,
			Text:        instruction,
			AspectRatio: string(aspect(req.AspectRatio)),
			ImageSize:   string(res),
		})
	})
	if err != nil {
		return Result{}, fmt.Errorf("edit image: %w", err)
	}
	return fromGenai(out), nil
}

func (g *GeminiGenerator) Assist(ctx context.Context, req AssistRequest) (string, error) {
	images, err := inlineImages(req.Images)
	if err != nil {
		return "", err
	}
	return retry.Do(ctx, g.policy, func(ctx context.Context) (string, error) {
		return g.client.Chat(ctx, genai.ChatRequest{
			System: AssistantSystemInstruction,
			Images: images,
			Text:   req.Text,
		})
	})
}

func inlineImages(atts []domain.Attachment) ([]genai.InlineImage, error) {
	images := make([]genai.InlineImage, 0, len(atts))
	for i, att := range atts {
		if !att.Usable() {
			return nil, fmt.Errorf("%w: reference %d has no encoded data", domain.ErrEncodingFailure, i)
		}
		images = append(images, genai.InlineImage{MimeType: att.MimeType, Data: att.EncodedData})
	}
	return images, nil
}

func fromGenai(r genai.Result) Result {
	out := Result{Feedback: r.Text}
	if r.Image != nil {
		out.Image = r.Image.DataURI()
		out.MimeType = r.Image.MimeType
		out.Data = r.Image.Data
	}
	return out
}

func resolution(r domain.ImageResolution) domain.ImageResolution {
	if r == "" {
		return domain.Resolution2K
	}
	return r
}

func aspect(a domain.ImageAspectRatio) domain.ImageAspectRatio {
	if a == "" {
		return domain.AspectPortrait
	}
	return a
}

var (
	_ Generator = (*GeminiGenerator)(nil)
	_ Assistant = (*GeminiGenerator)(nil)
)
