package prodimg

import (
	"regexp"
	"strings"
)

// Category keywords for the washing-machine domain. A detail page must
// accumulate a positive score (keyword hits minus disqualifier hits) to be
// trusted; the disqualifiers catch accessory and spare-part listings that
// mention the category in passing.
var (
	categoryKeywords = []string{
		"lave-linge", "machine à laver", "washing machine", "lave linge",
		"frontale", "hublot", "top", "essorage", "tour/min", "kg",
		"capacité", "lessive", "linge",
	}
	categoryDisqualifiers = []string{
		"cordon d'alimentation", "cordon", "câble", "cable", "prise", "power cord",
		"interrupteur", "adaptateur", "multiprise", "rallonge",
	}
)

// categoryScoreMin is the minimum net keyword score for acceptance.
const categoryScoreMin = 2

// maxModelTokens caps how many model tokens participate in matching.
const maxModelTokens = 4

var modelTokenRE = regexp.MustCompile(`[A-Za-z0-9]{3,}`)

// CategoryMatch reports whether page text plausibly describes a washing
// machine rather than an accessory or unrelated product.
func CategoryMatch(text string) bool {
	t := strings.ToLower(text)
	score := 0
	for _, k := range categoryKeywords {
		if strings.Contains(t, k) {
			score++
		}
	}
	for _, b := range categoryDisqualifiers {
		if strings.Contains(t, b) {
			score--
		}
	}
	return score >= categoryScoreMin
}

// TokenizeModel splits a model string into lowercase alphanumeric tokens
// of length >= 3, deduplicated in order of first occurrence.
func TokenizeModel(model string) []string {
	var tokens []string
	seen := make(map[string]struct{})
	for _, t := range modelTokenRE.FindAllString(model, -1) {
		lt := strings.ToLower(t)
		if _, ok := seen[lt]; ok {
			continue
		}
		seen[lt] = struct{}{}
		tokens = append(tokens, lt)
	}
	return tokens
}

// ModelTokensMatch reports whether enough of the model's tokens appear
// verbatim in the page text: at least half of the first four tokens,
// rounded down, minimum one. An empty model always matches.
func ModelTokensMatch(text, model string) bool {
	tokens := TokenizeModel(model)
	if len(tokens) > maxModelTokens {
		tokens = tokens[:maxModelTokens]
	}
	if len(tokens) == 0 {
		return true
	}
	low := strings.ToLower(text)
	found := 0
	for _, t := range tokens {
		if strings.Contains(low, t) {
			found++
		}
	}
	return found >= max(1, len(tokens)/2)
}

// RelevantPage reports whether a detail page describes the target machine:
// it must pass both the category check and the model-token check before
// its extracted image is trusted.
func RelevantPage(html, model string) bool {
	return CategoryMatch(html) && ModelTokensMatch(html, model)
}
