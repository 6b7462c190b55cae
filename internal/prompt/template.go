package prompt

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"studio/internal/domain"
)

// TemplateKind names one of the guided wizards.
type TemplateKind string

const (
	KindFashion  TemplateKind = "fashion"
	KindProduct  TemplateKind = "product"
	KindFlyer    TemplateKind = "flyer"
	KindInterior TemplateKind = "interior"
)

// Kinds lists every template in display order.
var Kinds = []TemplateKind{KindFashion, KindProduct, KindFlyer, KindInterior}

// ParseKind validates a template kind.
func ParseKind(v string) (TemplateKind, error) {
	k := TemplateKind(strings.ToLower(strings.TrimSpace(v)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: template %q", domain.ErrInvalidOption, v)
}

// Option categories inside Selection.Options.
const (
	CategoryModel     = "model"
	CategoryLocation  = "location"
	CategoryPlacement = "placement"
	CategoryType      = "type"
	CategoryStyle     = "style"
)

// Selection is the state of a template form when the user confirms it.
// For interior templates the Background slot carries the base room.
type Selection struct {
	Kind       TemplateKind
	Options    map[string]string
	Surprise   bool
	Products   []domain.Upload
	Model      *domain.Upload
	Background *domain.Upload
	Logo       *domain.Upload
}

// Draft is a synthesized instruction and the ordered references that go
// with it.
type Draft struct {
	Instruction string
	References  []domain.Upload
}

// Category is one option group of a form.
type Category struct {
	Name    string  `json:"name"`
	Default string  `json:"default,omitempty"`
	Options Catalog `json:"options"`
}

// Form describes what a template asks for.
type Form struct {
	Kind             TemplateKind `json:"kind"`
	Categories       []Category   `json:"categories"`
	RequiresProducts bool         `json:"requires_products"`
	AllowsSurprise   bool         `json:"allows_surprise"`
}

// FormFor returns the option groups of a template.
func FormFor(kind TemplateKind) (Form, error) {
	switch kind {
	case KindFashion:
		return Form{Kind: kind, RequiresProducts: true, Categories: []Category{
			{Name: CategoryModel, Default: "nigerian-f", Options: FashionModels.Labeled()},
			{Name: CategoryLocation, Default: "studio", Options: FashionLocations.Labeled()},
		}}, nil
	case KindProduct:
		return Form{Kind: kind, RequiresProducts: true, Categories: []Category{
			{Name: CategoryPlacement, Default: "podium", Options: ProductPlacements.Labeled()},
		}}, nil
	case KindFlyer:
		return Form{Kind: kind, AllowsSurprise: true, Categories: []Category{
			{Name: CategoryType, Default: "promo", Options: FlyerTypes.Labeled()},
			{Name: CategoryStyle, Options: FlyerStyles.Labeled()},
		}}, nil
	case KindInterior:
		return Form{Kind: kind, AllowsSurprise: true, Categories: []Category{
			{Name: CategoryStyle, Default: "modern-luxury", Options: InteriorStyles.Labeled()},
		}}, nil
	default:
		return Form{}, fmt.Errorf("%w: template %q", domain.ErrInvalidOption, kind)
	}
}

// Picker chooses an index in [0, n). *rand.Rand satisfies it.
type Picker interface {
	IntN(n int) int
}

// Synthesizer turns free text or template selections into instructions.
// Its only state is the picker used for surprise choices.
type Synthesizer struct {
	mu   sync.Mutex
	pick Picker
}

// NewSynthesizer uses p for surprise choices, or a time-seeded source when p
// is nil.
func NewSynthesizer(p Picker) *Synthesizer {
	if p == nil {
		seed := uint64(time.Now().UnixNano())
		p = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return &Synthesizer{pick: p}
}

func (s *Synthesizer) choose(options []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return options[s.pick.IntN(len(options))]
}

func (sel Selection) option(category string, catalog Catalog, fallback string) (Option, error) {
	id := strings.TrimSpace(sel.Options[category])
	if id == "" {
		id = fallback
	}
	if id == "" {
		return Option{}, nil
	}
	o, ok := catalog.Find(id)
	if !ok {
		return Option{}, fmt.Errorf("%w: %s %q", domain.ErrInvalidOption, category, id)
	}
	return o, nil
}

// FromTemplate builds the instruction and reference order for a confirmed
// template. Identical selections give identical drafts unless Surprise is
// set, in which case the picker decides the style.
func (s *Synthesizer) FromTemplate(sel Selection) (Draft, error) {
	switch sel.Kind {
	case KindFashion:
		return s.fashion(sel)
	case KindProduct:
		return s.product(sel)
	case KindFlyer:
		return s.flyer(sel)
	case KindInterior:
		return s.interior(sel)
	default:
		return Draft{}, fmt.Errorf("%w: template %q", domain.ErrInvalidOption, sel.Kind)
	}
}

func (s *Synthesizer) fashion(sel Selection) (Draft, error) {
	if len(sel.Products) == 0 {
		return Draft{}, fmt.Errorf("%w: fashion needs at least one collection image", domain.ErrTemplateIncomplete)
	}
	model, err := sel.option(CategoryModel, FashionModels, "nigerian-f")
	if err != nil {
		return Draft{}, err
	}
	loc, err := sel.option(CategoryLocation, FashionLocations, "studio")
	if err != nil {
		return Draft{}, err
	}

	refs := append([]domain.Upload(nil), sel.Products...)
	instruction := fmt.Sprintf("Generate a high-fashion editorial shot of the attached outfit worn by %s. Set the scene in %s with professional lighting.",
		model.describe(), loc.describe())

	if model.ID == ModelCustom && sel.Model != nil {
		instruction = "Fashion photoshoot. Dress the person in the provided MODEL REFERENCE image with the attached clothing item. Keep the model's pose and features exactly as shown."
		refs = append(refs, *sel.Model)
	}
	if loc.ID == LocationCustom && sel.Background != nil {
		instruction += " Use the provided BACKGROUND image as the location. Blend realistically."
		refs = append(refs, *sel.Background)
	}
	return Draft{Instruction: instruction, References: refs}, nil
}

func (s *Synthesizer) product(sel Selection) (Draft, error) {
	if len(sel.Products) == 0 {
		return Draft{}, fmt.Errorf("%w: product needs at least one product image", domain.ErrTemplateIncomplete)
	}
	placement, err := sel.option(CategoryPlacement, ProductPlacements, "podium")
	if err != nil {
		return Draft{}, err
	}

	refs := append([]domain.Upload(nil), sel.Products...)
	var instruction string
	switch {
	case placement.ID == PlacementHands:
		instruction = "Create a lifestyle influencer shot. A famous African influencer holding the attached product naturally in their hands. High-end social media aesthetic, shallow depth of field."
	case placement.ID == PlacementCustom && sel.Background != nil:
		instruction = "Commercial product photography. Composite the attached product into the provided BACKGROUND image. Match the lighting and perspective perfectly."
		refs = append(refs, *sel.Background)
	default:
		instruction = fmt.Sprintf("Create a premium commercial product photography shot. Place the attached product on %s. Use cinematic lighting to highlight textures.",
			placement.describe())
	}
	return Draft{Instruction: instruction, References: refs}, nil
}

func (s *Synthesizer) flyer(sel Selection) (Draft, error) {
	kind, err := sel.option(CategoryType, FlyerTypes, "promo")
	if err != nil {
		return Draft{}, err
	}
	style, err := sel.option(CategoryStyle, FlyerStyles, "")
	if err != nil && !sel.Surprise {
		return Draft{}, err
	}

	refs := append([]domain.Upload(nil), sel.Products...)
	if sel.Logo != nil {
		refs = append(refs, *sel.Logo)
	}

	var b strings.Builder
	if sel.Surprise {
		fmt.Fprintf(&b, "Design a %s flyer that pops. Use %s. Make it look like a global brand campaign.",
			kind.Title(), s.choose(FlyerDirectives))
	} else {
		styleLabel := "Modern"
		if style.ID != "" {
			styleLabel = style.Title()
		}
		focus := "elegant aesthetics"
		if style.ID == FlyerStyleBold {
			focus = "strong typography"
		}
		fmt.Fprintf(&b, "Design a professional %s %s flyer. Focus on clean layout, %s, and clear messaging.",
			styleLabel, kind.Title(), focus)
	}
	if len(sel.Products) > 0 {
		b.WriteString(" Feature the attached product image(s) prominently.")
	}
	if sel.Logo != nil {
		b.WriteString(" Include the attached brand logo.")
	}
	b.WriteString(" Full bleed digital design, ready for print.")
	return Draft{Instruction: b.String(), References: refs}, nil
}

func (s *Synthesizer) interior(sel Selection) (Draft, error) {
	style, err := sel.option(CategoryStyle, InteriorStyles, "modern-luxury")
	if err != nil && !sel.Surprise {
		return Draft{}, err
	}

	// The base room always leads the references; the remote model reads the
	// first image as the space to preserve.
	var refs []domain.Upload
	if sel.Background != nil {
		refs = append(refs, *sel.Background)
	}
	refs = append(refs, sel.Products...)

	vibe := style.Title()
	if sel.Surprise {
		vibe = s.choose(InteriorVibes)
	}

	var instruction string
	switch {
	case sel.Background != nil && len(sel.Products) > 0:
		instruction = "Stage this exact room by placing the attached items into it. Keep the room structure exactly as is, do not transform the room itself."
	case sel.Background != nil:
		instruction = fmt.Sprintf("Decorate this exact room in a %s style. Maintain the exact architectural structure (walls, floor, windows) without changing them. Only add furniture and decor.", vibe)
	case len(sel.Products) > 0:
		instruction = fmt.Sprintf("Create a photorealistic %s interior space. Stage the room with the attached furniture items as the focal point.", vibe)
	default:
		instruction = fmt.Sprintf("Create a photorealistic %s interior space. Fully furnished and decorated with impeccable taste.", vibe)
	}
	return Draft{Instruction: instruction, References: refs}, nil
}
