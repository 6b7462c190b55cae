package domain

// RequestMode selects which remote operation a send performs.
type RequestMode string

const (
	ModeGenerate              RequestMode = "generate"
	ModeGenerateWithReference RequestMode = "generate_with_reference"
	ModeEdit                  RequestMode = "edit"
)

// ImageAspectRatio enumerates supported output ratios.
type ImageAspectRatio string

const (
	AspectSquare    ImageAspectRatio = "1:1"
	AspectPortrait  ImageAspectRatio = "3:4"
	AspectLandscape ImageAspectRatio = "4:3"
	AspectStory     ImageAspectRatio = "9:16"
	AspectWide      ImageAspectRatio = "16:9"
	AspectCinema    ImageAspectRatio = "21:9"
)

// ImageResolution enumerates target output sizes. The remote model may cap it.
type ImageResolution string

const (
	Resolution1K ImageResolution = "1K"
	Resolution2K ImageResolution = "2K"
	Resolution4K ImageResolution = "4K"
)

// ParseAspectRatio validates a ratio string, returning fallback when empty.
func ParseAspectRatio(v string, fallback ImageAspectRatio) (ImageAspectRatio, error) {
	switch r := ImageAspectRatio(v); r {
	case "":
		return fallback, nil
	case AspectSquare, AspectPortrait, AspectLandscape, AspectStory, AspectWide, AspectCinema:
		return r, nil
	default:
		return "", ErrInvalidOption
	}
}

// ParseResolution validates a resolution string, returning fallback when empty.
func ParseResolution(v string, fallback ImageResolution) (ImageResolution, error) {
	switch r := ImageResolution(v); r {
	case "":
		return fallback, nil
	case Resolution1K, Resolution2K, Resolution4K:
		return r, nil
	default:
		return "", ErrInvalidOption
	}
}
