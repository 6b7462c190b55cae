package prompt

import (
	"regexp"
	"strings"
)

// Intent is the creative category detected in free text.
type Intent string

const (
	IntentBlackGhost     Intent = "black_ghost_mannequin"
	IntentGhost          Intent = "ghost_mannequin"
	IntentFlyerWithModel Intent = "flyer_with_model"
	IntentFlyer          Intent = "flyer"
	IntentInterior       Intent = "interior"
	IntentInfluencer     Intent = "influencer"
	IntentModel          Intent = "fashion_model"
	IntentProductOnly    Intent = "product_only"
	IntentFashion        Intent = "fashion_default"
)

// IsDesign reports whether the intent yields a flat graphic design instead of
// a photograph.
func (i Intent) IsDesign() bool {
	return i == IntentFlyer || i == IntentFlyerWithModel
}

var (
	blackGhostPattern  = regexp.MustCompile(`\b(black mannequin|black ghost)\b`)
	ghostPattern       = regexp.MustCompile(`\b(ghost mannequin|invisible model)\b`)
	flyerPattern       = regexp.MustCompile(`\b(flyers?|posters?|ads?|banners?|campaigns?|posts?|greetings?|invitations?|cards?|story|stories|promotions?|sales?|marketing)\b`)
	interiorPattern    = regexp.MustCompile(`\b(interiors?|rooms?|furniture|design makeover|living room|bedrooms?|stores?|offices?|kitchens?|space|area|decorate|staging|home staging|redesign|renovate|arrange|stage)\b`)
	stagingPattern     = regexp.MustCompile(`\b(stage|arrange|furnish|decorate|add items|place)\b`)
	influencerPattern  = regexp.MustCompile(`\b(influencers?|holding|holding the product|holding it|model holding)\b`)
	humanPattern       = regexp.MustCompile(`\b(man|woman|person|people|model|girl|boy|guy|lady|human|face|skin|wearing|influencer)\b`)
	productOnlyPattern = regexp.MustCompile(`\b(on white background|on a table|flat lay|product shot|close up of|only the|just the)\b`)
)

type intentRule struct {
	intent Intent
	match  func(text string) bool
}

func matches(p *regexp.Regexp) func(string) bool {
	return p.MatchString
}

// intentRules is evaluated top to bottom; the first match wins, so a later
// rule never sees text claimed by an earlier one.
var intentRules = []intentRule{
	{IntentBlackGhost, matches(blackGhostPattern)},
	{IntentGhost, matches(ghostPattern)},
	{IntentFlyerWithModel, func(t string) bool { return flyerPattern.MatchString(t) && humanPattern.MatchString(t) }},
	{IntentFlyer, matches(flyerPattern)},
	{IntentInterior, matches(interiorPattern)},
	{IntentInfluencer, matches(influencerPattern)},
	{IntentModel, matches(humanPattern)},
	{IntentProductOnly, matches(productOnlyPattern)},
}

// Classify returns the intent of a free-text instruction.
func Classify(text string) Intent {
	lower := strings.ToLower(text)
	for _, r := range intentRules {
		if r.match(lower) {
			return r.intent
		}
	}
	return IntentFashion
}

// IsStaging reports whether interior text asks to place items in a space
// rather than redecorate it.
func IsStaging(text string) bool {
	return stagingPattern.MatchString(strings.ToLower(text))
}
