package prompt

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Option is one selectable card inside a template form.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Desc  string `json:"desc,omitempty"`
	// Phrase is the wording used inside instructions. Options without one are
	// described by their title.
	Phrase string `json:"-"`
}

// Title returns the display label, deriving it from the id when unset.
func (o Option) Title() string {
	if o.Label != "" {
		return o.Label
	}
	return cases.Title(language.Und).String(strings.ReplaceAll(o.ID, "-", " "))
}

func (o Option) describe() string {
	if o.Phrase != "" {
		return o.Phrase
	}
	return o.Title()
}

// Catalog is an ordered option list.
type Catalog []Option

// Find looks an option up by id.
func (c Catalog) Find(id string) (Option, bool) {
	for _, o := range c {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// Labeled returns a copy with every label resolved, for display.
func (c Catalog) Labeled() Catalog {
	out := make(Catalog, len(c))
	for i, o := range c {
		o.Label = o.Title()
		out[i] = o
	}
	return out
}

const (
	ModelCustom     = "custom-model"
	LocationCustom  = "custom"
	PlacementCustom = "custom"
	PlacementHands  = "influencer"
	FlyerStyleBold  = "bold"
)

var FashionModels = Catalog{
	{ID: "ghost", Label: "Ghost Mannequin", Desc: "Invisible fit", Phrase: "an invisible ghost mannequin"},
	{ID: "black-ghost", Label: "Black Mannequin", Desc: "Dark stealth fit", Phrase: "a black matte stealth mannequin"},
	{ID: "nigerian-f", Label: "Female Model", Desc: "Editorial look", Phrase: "a stunning African female model"},
	{ID: "nigerian-m", Label: "Male Model", Desc: "Sharp look", Phrase: "a sharp African male model"},
	{ID: "diverse", Label: "Group Shot", Desc: "Urban vibe", Phrase: "a diverse group of African models"},
	{ID: ModelCustom, Label: "My Model", Desc: "Upload own", Phrase: "a professional model"},
}

var FashionLocations = Catalog{
	{ID: "studio", Desc: "Clean background", Phrase: "a clean professional studio"},
	{ID: "luxury", Desc: "Penthouse", Phrase: "a high-end luxury penthouse"},
	{ID: "street", Desc: "Lagos vibes", Phrase: "a vibrant urban street"},
	{ID: "runway", Desc: "Fashion show", Phrase: "a professional fashion runway"},
	{ID: "industrial", Desc: "Raw concrete", Phrase: "a raw industrial concrete space"},
	{ID: "vintage", Desc: "Retro aesthetic", Phrase: "a retro vintage setting"},
	{ID: LocationCustom, Desc: "Your image", Phrase: "a clean professional studio"},
}

var ProductPlacements = Catalog{
	{ID: "studio-pro", Label: "Pro Studio", Desc: "Controlled light", Phrase: "a professional studio infinity curve"},
	{ID: PlacementHands, Desc: "Model holding it"},
	{ID: "podium", Desc: "Minimalist", Phrase: "a minimalist podium"},
	{ID: "marble", Desc: "Luxury stone", Phrase: "a polished luxury marble surface"},
	{ID: "water", Desc: "Fresh ripple", Phrase: "a surface with fresh water ripples"},
	{ID: "nature", Desc: "Organic", Phrase: "a natural setting with organic elements"},
	{ID: PlacementCustom, Desc: "Your image", Phrase: "a clean studio backdrop"},
}

var FlyerTypes = Catalog{
	{ID: "promo", Label: "Sales Promo", Desc: "Discounts & offers"},
	{ID: "launch", Label: "New Arrival", Desc: "Product launch"},
	{ID: "event", Desc: "Invitation / save the date"},
	{ID: "greeting", Desc: "Holiday / seasonal"},
	{ID: "general", Label: "Brand Ad", Desc: "General awareness"},
}

var FlyerStyles = Catalog{
	{ID: "minimalist", Desc: "Clean, Swiss style"},
	{ID: FlyerStyleBold, Label: "Bold & Loud", Desc: "High contrast"},
	{ID: "elegant", Desc: "Luxury serif fonts"},
	{ID: "fun", Label: "Fun & Playful", Desc: "Colorful & pop"},
	{ID: "urban", Desc: "Streetwear vibe"},
}

var InteriorStyles = Catalog{
	{ID: "modern-luxury", Desc: "Sleek & expensive"},
	{ID: "african-modern", Label: "Afro-Modern", Desc: "Earth tones & art"},
	{ID: "minimalist", Desc: "Clean lines"},
	{ID: "industrial", Desc: "Raw materials"},
	{ID: "cozy", Label: "Cozy / Warm", Desc: "Inviting & soft"},
}

// FlyerDirectives replace the chosen style when a flyer is a surprise. None
// of them repeats a FlyerStyles label.
var FlyerDirectives = []string{
	"high-energy visuals and massive typography",
	"a sleek dark-mode aesthetic with neon accents",
	"a refined layout with generous whitespace",
	"a vibrant, colorful pop-art inspired design",
}

// InteriorVibes replace the chosen style when an interior is a surprise.
var InteriorVibes = []string{
	"Scandinavian Minimalist",
	"Industrial Loft",
	"Afro-Bohemian",
	"Ultra-Modern Luxury",
	"Warm Contemporary",
}
