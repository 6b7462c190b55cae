package prompt

import (
	"fmt"
	"strings"

	"studio/internal/domain"
)

// TextInput is what the user typed plus the context that shapes the
// instruction around it.
type TextInput struct {
	Text       string
	Brand      *domain.BrandProfile
	Resolution domain.ImageResolution
}

var directives = map[Intent][]string{
	IntentFlyerWithModel: {
		"SUBJECT: Modern marketing design WITH HUMAN MODEL.",
		"- TYPE: Digital graphic design (full bleed).",
		"- COMPOSITION: Edge-to-edge design. NO borders. NO paper mockups. NO 3D perspective of a sheet.",
		"- ETHNICITY: Melanin-rich Black African.",
		"- STYLE: High-end editorial integration.",
		"- SKIN TONE: Deep, rich, luxurious chocolate tones.",
	},
	IntentFlyer: {
		"SUBJECT: Pure graphic design, typography focused.",
		"- TYPE: Digital graphic design (full bleed).",
		"- COMPOSITION: Edge-to-edge design. NO borders. NO paper mockups. NO 3D perspective.",
		"- FORMAT: Print-ready digital asset.",
		"- ABSOLUTELY NO HUMANS. NO HANDS. NO FINGERS. NO BODY PARTS. NO SILHOUETTES.",
		"- Focus strictly on the layout, typography, and any provided product images.",
		"- VISUAL STYLE: Match the requested style exactly.",
	},
	IntentInfluencer: {
		"SUBJECT: Lifestyle influencer shot.",
		"- ACTION: The model is naturally holding or interacting with the product.",
		"- ETHNICITY: Melanin-rich Black African.",
		"- VIBE: Trendy, social media famous, high-end.",
		"- SKIN TONE: Deep, rich, luxurious chocolate tones. Glowing skin.",
		"- MAKEUP: Flawless, contemporary.",
		"- FOCUS: The product must be clearly visible in their hands.",
	},
	IntentBlackGhost: {
		"SUBJECT: Black ghost mannequin photography.",
		"- INVISIBLE MODEL: The clothing looks filled out by a body, but NO BODY PARTS are visible.",
		"- INNER FORM: Neck hole, sleeve openings and hem reveal a MATTE BLACK, NON-REFLECTIVE inner shell.",
		"- STEALTH AESTHETIC: High contrast, premium, futuristic.",
		"- 3D VOLUME: The fabric drapes naturally as if worn.",
		"- STRICTLY FORBIDDEN: Human skin, hands, feet, white mannequin parts.",
	},
	IntentGhost: {
		"SUBJECT: Ghost mannequin photography.",
		"- INVISIBLE MODEL: The clothing looks filled out by a body, but NO BODY PARTS are visible.",
		"- NO HANDS. NO FEET. NO NECK. NO HEAD. NO VISIBLE SKIN.",
		"- HOLLOW NECK EFFECT: Show the inside label or back of the neck where the head would be.",
		"- 3D VOLUME: The fabric drapes naturally as if worn.",
		"- STRICTLY FORBIDDEN: Flat lay, wrinkled clothes on the floor, visible mannequins, plastic dummies.",
	},
	IntentProductOnly: {
		"SUBJECT: Professional product photography.",
		"- FOCUS: The product is the sole hero.",
		"- NO HUMANS. NO HANDS.",
		"- LIGHTING: High-end commercial studio lighting.",
	},
	IntentModel:   fashionDirective,
	IntentFashion: fashionDirective,
}

var fashionDirective = []string{
	"SUBJECT: Fashion model photography.",
	"- ETHNICITY: Melanin-rich Black African.",
	"- STYLE: High-end editorial, Vogue Africa aesthetic.",
	"- POSE: Dynamic, confident, showcasing the outfit.",
	"- SKIN: Deep, glowing, unblemished.",
}

const (
	stagingTask     = "STAGING ONLY. Add furniture and decor to the existing empty or semi-empty space. Do not remodel the architecture."
	redecorateTask  = "Redecorate the existing space while keeping the structure 100% intact."
	followUserBlock = "IMPORTANT: FOLLOW THE USER PROMPT EXACTLY. DO NOT ADD ELEMENTS NOT REQUESTED."
)

func interiorDirective(text string) []string {
	task := redecorateTask
	if IsStaging(text) {
		task = stagingTask
	}
	return []string{
		"SUBJECT: Architectural interior visualization & staging.",
		"- TYPE: Professional architectural visualization.",
		"- INPUT HANDLING:",
		"  1. STRUCTURAL LOCK: When an image of a space is provided, PRESERVE its walls, windows, doors, ceiling and floor plan EXACTLY. Do not invent new windows or change the room's geometry.",
		"  2. TASK: " + task,
		"  3. EXISTING FURNITURE: Existing furniture may be replaced or arranged around as requested.",
		"- NO PEOPLE: Do not generate homeowners or occupants. The room must be empty of people.",
		"- VISUAL STYLE: Photorealistic, high-end, magazine quality.",
	}
}

// Directive returns the intent-specific block for text.
func Directive(intent Intent, text string) []string {
	if intent == IntentInterior {
		return interiorDirective(text)
	}
	return directives[intent]
}

func brandBlock(b *domain.BrandProfile) []string {
	if b == nil || !b.ApplyBrandTone {
		return nil
	}
	return []string{
		"BRAND CONTEXT:",
		"- Name: " + b.Name,
		"- Industry: " + b.Industry,
		"- Tone: " + b.Tone,
		"- INSTRUCTION: Apply this brand tone visually to the generated image.",
	}
}

func technicalBlock(intent Intent, res domain.ImageResolution) []string {
	if intent.IsDesign() {
		return []string{
			"TECHNICAL REQUIREMENTS:",
			"- TYPE: Digital graphic design / print-ready asset.",
			"- VIEW: Frontal, flat, 2D (unless 3D typography is requested).",
			"- COMPOSITION: Full bleed, edge-to-edge, no borders, no mockup environment.",
			fmt.Sprintf("- QUALITY: %s, vector-like sharpness, perfect typography.", res),
			"- DO NOT generate a photo of a paper on a table. Generate the design itself.",
		}
	}
	return []string{
		"TECHNICAL REQUIREMENTS:",
		fmt.Sprintf("- RESOLUTION: %s, ultra-detailed.", res),
		"- LIGHTING: Professional studio or natural golden hour, depending on context.",
		"- CAMERA: 85mm lens, f/1.8.",
		"- TEXTURE: Real fabric textures, skin pores visible.",
		"- NO DISTORTIONS: Perfect hands, eyes, and face.",
	}
}

// FromText wraps the user's words, unaltered, in the task header, intent
// directives, optional brand block and technical requirements. Reference
// images keep the order they were attached in.
func (s *Synthesizer) FromText(in TextInput) string {
	res := in.Resolution
	if res == "" {
		res = domain.Resolution2K
	}
	intent := Classify(in.Text)

	header := fmt.Sprintf("TASK: Generate a photorealistic %s image.", res)
	if intent.IsDesign() {
		header = "TASK: Generate a professional digital marketing design (full bleed)."
	}

	blocks := [][]string{
		{header, `USER PROMPT: "` + in.Text + `"`},
		{followUserBlock},
		Directive(intent, in.Text),
		brandBlock(in.Brand),
		technicalBlock(intent, res),
	}
	var sections []string
	for _, b := range blocks {
		if len(b) == 0 {
			continue
		}
		sections = append(sections, strings.Join(b, "\n"))
	}
	return strings.Join(sections, "\n\n")
}
