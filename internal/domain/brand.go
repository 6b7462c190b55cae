package domain

// BrandProfile describes the user's business. Its tone is only injected into
// generation prompts when ApplyBrandTone is set.
type BrandProfile struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Industry       string `json:"industry"`
	Tone           string `json:"tone"`
	LogoURL        string `json:"logo_url,omitempty"`
	ApplyBrandTone bool   `json:"apply_brand_tone"`
}
