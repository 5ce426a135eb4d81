package matching

import "strings"

// Unbounded marks the open upper end of a price range.
const Unbounded = int(^uint(0) >> 1)

// PriceRange holds inclusive numeric bounds for a session price bucket.
type PriceRange struct {
	Min int
	Max int
}

// Contains reports whether price falls inside the range.
func (r PriceRange) Contains(price int) bool {
	return price >= r.Min && price <= r.Max
}

// Open reports whether the range carries no effective constraint.
func (r PriceRange) Open() bool {
	return r.Min == 0 && r.Max == Unbounded
}

var priceRanges = map[string]PriceRange{
	"upto50":   {Min: 0, Max: 50},
	"51-90":    {Min: 51, Max: 90},
	"91-150":   {Min: 91, Max: 150},
	"above150": {Min: 151, Max: Unbounded},
}

// ParsePriceRange maps a human-readable price bucket label to numeric bounds.
// Unknown or empty labels map to the unbounded range; the function never fails.
func ParsePriceRange(label string) PriceRange {
	if r, ok := priceRanges[canonicalPriceLabel(label)]; ok {
		return r
	}
	return PriceRange{Min: 0, Max: Unbounded}
}

// canonicalPriceLabel strips currency symbols, spaces and dash variants so the
// lookup tolerates the label spellings used across the intake forms.
func canonicalPriceLabel(label string) string {
	replacer := strings.NewReplacer("$", "", " ", "", "–", "-", "—", "-")
	return strings.ToLower(replacer.Replace(strings.TrimSpace(label)))
}

// practiceTagMap translates seeker-facing affirmative-practice vocabulary to
// the tags provider profiles carry.
var practiceTagMap = map[string]string{
	"feminist-informed":       "Feminist",
	"lgbtq-friendly":          "LGBTQ+ Affirmative",
	"sex-positive":            "Sex Positive",
	"neurodivergent-friendly": "Neurodivergence Affirmative",
	"faith-sensitive":         "Faith Aware",
	"body-positive":           "Body Positive",
	"kink-aware":              "Kink Aware",
	"polyamory-friendly":      "Polyamory Affirmative",
}

// MapPreferenceTags translates seeker preference tags to provider vocabulary.
// Tags with no mapping are dropped silently.
func MapPreferenceTags(tags []string) []string {
	var mapped []string
	for _, tag := range tags {
		key := strings.ToLower(strings.TrimSpace(tag))
		if translated, ok := practiceTagMap[key]; ok {
			mapped = append(mapped, translated)
		}
	}
	return mapped
}
