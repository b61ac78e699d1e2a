package prodimg

import (
	"bytes"
	"image"
	"strings"

	// Decoders for the formats product CDNs serve.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// Image acceptance thresholds. Product shots are near-portrait and at
// least thumbnail-sized; anything outside these bounds is a banner, a
// crop, or an icon.
const (
	MinImageDimension = 200
	MinAspectRatio    = 0.4
	MaxAspectRatio    = 1.2

	// transparentAlphaMax is the alpha value below which a pixel counts
	// as transparent, and maxTransparentShare the accepted fraction of
	// such pixels. Logo cutouts are mostly transparent; photos are not.
	transparentAlphaMax = 16
	maxTransparentShare = 0.5
)

// badImageURLTerms mark sprites, logos, and placeholders on the CDN.
var badImageURLTerms = []string{
	"sprite", "logo", "nav", "placeholder", "no_image", "noimage", "g/",
}

// IsProductImageURL reports whether a URL looks like a real product image
// on the marketplace CDN rather than a sprite, logo, or placeholder.
// URLs hosted elsewhere might still be fine, but be conservative.
func IsProductImageURL(url string) bool {
	if url == "" {
		return false
	}
	u := strings.ToLower(url)
	if !strings.Contains(u, "m.media-amazon.com") || !strings.Contains(u, "/images/i/") {
		return false
	}
	for _, term := range badImageURLTerms {
		if strings.Contains(u, term) {
			return false
		}
	}
	return true
}

// ValidateImage decodes a downloaded payload and checks that it is a
// plausible product image. Returns ENOTFOUND with a reason on rejection;
// decode failures are rejections, never faults.
func ValidateImage(data []byte) error {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Errorf(ENOTFOUND, "image rejected: undecodable payload")
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < MinImageDimension || height < MinImageDimension {
		return Errorf(ENOTFOUND, "image rejected: %dx%d below minimum size", width, height)
	}

	aspect := float64(width) / float64(height)
	if aspect < MinAspectRatio || aspect > MaxAspectRatio {
		return Errorf(ENOTFOUND, "image rejected: aspect ratio %.2f outside bounds", aspect)
	}

	if share := transparentShare(img); share > maxTransparentShare {
		return Errorf(ENOTFOUND, "image rejected: %.0f%% transparent", share*100)
	}

	return nil
}

// transparentShare returns the fraction of near-fully-transparent pixels.
// Opaque images (no alpha channel) always return 0.
func transparentShare(img image.Image) float64 {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return 0
	}
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return 0
	}
	var transparent int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			// Alpha is 16-bit here; compare against the 8-bit
			// threshold scaled up.
			_, _, _, a := img.At(x, y).RGBA()
			if a < transparentAlphaMax<<8 {
				transparent++
			}
		}
	}
	return float64(transparent) / float64(total)
}
