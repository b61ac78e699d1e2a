// Package goquery provides HTML extraction strategies built on goquery.
// Image extraction is a waterfall of independent heuristics, each
// implementing prodimg.ImageExtractor so it can be unit tested against
// fixture HTML in isolation and composed in priority order.
package goquery

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/prodimg"
)

// ProductPageExtractors returns the extraction chain for marketplace
// product pages, in priority order: social-preview meta tag, structured
// data, hi-res attribute, dynamic image map, plain image tag.
func ProductPageExtractors() prodimg.Extractors {
	return prodimg.Extractors{
		NewMetaImageSelector(),
		NewJSONLDImageSelector(),
		NewHiResImageSelector(),
		NewDynamicImageSelector(),
		NewImgTagSelector(),
	}
}

func parse(html string) (*goquery.Document, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, false
	}
	return doc, true
}

// MetaImageSelector extracts the social-preview image from og:image or
// twitter:image meta tags. Also used directly (unchained) for vendor and
// retailer detail pages, whose preview images live off the marketplace CDN.
type MetaImageSelector struct{}

var _ prodimg.ImageExtractor = (*MetaImageSelector)(nil)

// NewMetaImageSelector creates a MetaImageSelector.
func NewMetaImageSelector() *MetaImageSelector { return &MetaImageSelector{} }

// ExtractImage implements prodimg.ImageExtractor.
func (s *MetaImageSelector) ExtractImage(html string) (string, bool) {
	doc, ok := parse(html)
	if !ok {
		return "", false
	}
	for _, sel := range []string{
		`meta[property="og:image"]`,
		`meta[name="twitter:image"]`,
	} {
		if content, exists := doc.Find(sel).First().Attr("content"); exists && content != "" {
			return content, true
		}
	}
	return "", false
}

// JSONLDImageSelector extracts the image field from JSON-LD structured
// data blocks.
type JSONLDImageSelector struct{}

var _ prodimg.ImageExtractor = (*JSONLDImageSelector)(nil)

// NewJSONLDImageSelector creates a JSONLDImageSelector.
func NewJSONLDImageSelector() *JSONLDImageSelector { return &JSONLDImageSelector{} }

// ExtractImage implements prodimg.ImageExtractor.
func (s *JSONLDImageSelector) ExtractImage(html string) (string, bool) {
	doc, ok := parse(html)
	if !ok {
		return "", false
	}
	var found string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var payload any
		if err := json.Unmarshal([]byte(sel.Text()), &payload); err != nil {
			return true
		}
		if url := jsonLDImage(payload); url != "" {
			found = url
			return false
		}
		return true
	})
	return found, found != ""
}

// jsonLDImage pulls an image URL out of a decoded JSON-LD value. The
// image field may be a string, a list, or a nested ImageObject.
func jsonLDImage(v any) string {
	switch val := v.(type) {
	case string:
		if strings.HasPrefix(val, "http://") || strings.HasPrefix(val, "https://") {
			return val
		}
	case []any:
		for _, item := range val {
			if url := jsonLDImage(item); url != "" {
				return url
			}
		}
	case map[string]any:
		if img, ok := val["image"]; ok {
			if url := jsonLDImage(img); url != "" {
				return url
			}
		}
		if u, ok := val["url"].(string); ok {
			return jsonLDImage(u)
		}
	}
	return ""
}

// HiResImageSelector extracts the primary image's high-resolution
// attribute (data-old-hires on the landing image).
type HiResImageSelector struct{}

var _ prodimg.ImageExtractor = (*HiResImageSelector)(nil)

// NewHiResImageSelector creates a HiResImageSelector.
func NewHiResImageSelector() *HiResImageSelector { return &HiResImageSelector{} }

// ExtractImage implements prodimg.ImageExtractor.
func (s *HiResImageSelector) ExtractImage(html string) (string, bool) {
	doc, ok := parse(html)
	if !ok {
		return "", false
	}
	url, exists := doc.Find("#landingImage").First().Attr("data-old-hires")
	return url, exists && url != ""
}

// DynamicImageSelector extracts the first URL key of the dynamic image
// map attribute (data-a-dynamic-image), a JSON object keyed by image URL.
type DynamicImageSelector struct{}

var _ prodimg.ImageExtractor = (*DynamicImageSelector)(nil)

// NewDynamicImageSelector creates a DynamicImageSelector.
func NewDynamicImageSelector() *DynamicImageSelector { return &DynamicImageSelector{} }

// ExtractImage implements prodimg.ImageExtractor.
func (s *DynamicImageSelector) ExtractImage(html string) (string, bool) {
	doc, ok := parse(html)
	if !ok {
		return "", false
	}
	raw, exists := doc.Find("#landingImage").First().Attr("data-a-dynamic-image")
	if !exists || raw == "" {
		return "", false
	}
	return firstJSONKey(raw)
}

// firstJSONKey returns the first key of a JSON object in document order.
// A plain map decode would lose ordering, so walk the token stream.
func firstJSONKey(raw string) (string, bool) {
	dec := json.NewDecoder(strings.NewReader(raw))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return "", false
	}
	tok, err = dec.Token()
	if err != nil {
		return "", false
	}
	key, ok := tok.(string)
	return key, ok && key != ""
}

// ImgTagSelector is the plain image tag fallback: the landing image's src
// attribute.
type ImgTagSelector struct{}

var _ prodimg.ImageExtractor = (*ImgTagSelector)(nil)

// NewImgTagSelector creates an ImgTagSelector.
func NewImgTagSelector() *ImgTagSelector { return &ImgTagSelector{} }

// ExtractImage implements prodimg.ImageExtractor.
func (s *ImgTagSelector) ExtractImage(html string) (string, bool) {
	doc, ok := parse(html)
	if !ok {
		return "", false
	}
	url, exists := doc.Find("img#landingImage").First().Attr("src")
	return url, exists && url != ""
}
