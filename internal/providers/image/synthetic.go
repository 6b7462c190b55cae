package image

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strconv"

	"github.com/rs/zerolog"

	"studio/internal/domain"
	"studio/internal/infra"
)

const syntheticMime = "image/png"

// SyntheticGenerator renders deterministic placeholder images so the studio
// stays usable without a Gemini API key.
type SyntheticGenerator struct {
	logger *infra.Logger
}

// NewSyntheticGenerator returns an offline generator.
func NewSyntheticGenerator(logger *infra.Logger) *SyntheticGenerator {
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &SyntheticGenerator{logger: logger}
}

func (g *SyntheticGenerator) Generate(ctx context.Context, req GenerateRequest) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if _, err := inlineImages(req.References); err != nil {
		return Result{}, err
	}
	parts := []any{"generate", req.Text, aspect(req.AspectRatio)}
	for _, ref := range req.References {
		parts = append(parts, ref.EncodedData)
	}
	return g.render(aspect(req.AspectRatio), deterministicSeed(parts...))
}

func (g *SyntheticGenerator) Edit(ctx context.Context, req EditRequest) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if !req.Base.Usable() {
		return Result{}, fmt.Errorf("%w: edit base has no encoded data", domain.ErrEncodingFailure)
	}
	return g.render(aspect(req.AspectRatio), deterministicSeed("edit", req.Text, req.Base.EncodedData))
}

func (g *SyntheticGenerator) Assist(ctx context.Context, req AssistRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "Command processed. Describe the image you want to create or attach a product photo.", nil
}

func (g *SyntheticGenerator) render(ratio domain.ImageAspectRatio, seed string) (Result, error) {
	width, height := dimensions(ratio)
	blob := renderSyntheticImage(width, height, seed)
	if blob == nil {
		return Result{}, fmt.Errorf("render synthetic image")
	}
	data := base64.StdEncoding.EncodeToString(blob)

	g.logger.Debug().
		Str("seed", seed).
		Str("aspect_ratio", string(ratio)).
		Msg("image: rendered synthetic image")

	return Result{
		Image:    "data:" + syntheticMime + ";base64," + data,
		MimeType: syntheticMime,
		Data:     data,
	}, nil
}

// dimensions keeps placeholders small; only the ratio matters.
func dimensions(ratio domain.ImageAspectRatio) (int, int) {
	switch ratio {
	case domain.AspectSquare:
		return 256, 256
	case domain.AspectLandscape:
		return 256, 192
	case domain.AspectStory:
		return 180, 320
	case domain.AspectWide:
		return 320, 180
	case domain.AspectCinema:
		return 336, 144
	default:
		return 192, 256
	}
}

func renderSyntheticImage(width, height int, seed string) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	base := colorFromSeed(seed, 0)
	accent := colorFromSeed(seed, 1)
	draw.Draw(img, img.Bounds(), &image.Uniform{base}, image.Point{}, draw.Src)

	stripeHeight := max(8, height/12)
	for y := 0; y < height; y += stripeHeight * 2 {
		stripe := image.Rect(0, y, width, min(height, y+stripeHeight))
		draw.Draw(img, stripe, &image.Uniform{accent}, image.Point{}, draw.Over)
	}

	diagonal := colorFromSeed(seed, 2)
	for x := 0; x < max(width, height); x += max(8, width/32) {
		for y := 0; y < height; y++ {
			if x+y >= width {
				break
			}
			img.Set(x+y, y, diagonal)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

func colorFromSeed(seed string, shift int) color.RGBA {
	doubled := seed + seed
	start := (shift * 6) % len(seed)
	segment := doubled[start : start+6]
	return color.RGBA{R: hexByte(segment[0:2]), G: hexByte(segment[2:4]), B: hexByte(segment[4:6]), A: 255}
}

func hexByte(s string) uint8 {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}

func deterministicSeed(parts ...any) string {
	hasher := sha256.New()
	for _, part := range parts {
		fmt.Fprintf(hasher, "%v", part)
		hasher.Write([]byte{'|'})
	}
	return hex.EncodeToString(hasher.Sum(nil))[:16]
}

var (
	_ Generator = (*SyntheticGenerator)(nil)
	_ Assistant = (*SyntheticGenerator)(nil)
)
