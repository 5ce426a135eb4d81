package matching

import (
	"strings"

	"github.com/carelinkhq/carelink/internal/models"
)

// Scoring weights. The values are additive and unnormalised: relative
// importance is encoded directly in the weight.
const (
	genderMatchScore       = 10
	genderIndifferentScore = 5
	priceMatchScore        = 10
	topicWeight            = 3
	approachWeight         = 3
	practiceWeight         = 5
)

// GenderIndifferent is the sentinel for "no gender preference".
const GenderIndifferent = "indifferent"

// Preference is a seeker's preference vector for a single match request.
// It is ephemeral and never persisted.
type Preference struct {
	PriceRange string
	Topics     []string
	Approaches []string
	Gender     string
	Practices  []string
}

// hasGenderPreference reports whether the seeker expressed a gender choice.
func (p Preference) hasGenderPreference() bool {
	g := strings.TrimSpace(p.Gender)
	return g != "" && !strings.EqualFold(g, GenderIndifferent)
}

// Excluded reports whether the provider is disqualified outright. A seeker
// with an expressed gender preference never sees providers of another gender,
// no matter how strong the remaining criteria are.
func Excluded(pref Preference, provider models.Provider) bool {
	if !pref.hasGenderPreference() {
		return false
	}
	return !strings.EqualFold(strings.TrimSpace(provider.Gender), strings.TrimSpace(pref.Gender))
}

// Score computes the compatibility score between one seeker preference and
// one provider, returning the matched criteria alongside. The function is
// pure: identical input always produces identical output.
func Score(pref Preference, provider models.Provider) (int, []string) {
	var (
		score    int
		criteria []string
	)

	if pref.hasGenderPreference() {
		if strings.EqualFold(strings.TrimSpace(provider.Gender), strings.TrimSpace(pref.Gender)) {
			score += genderMatchScore
			criteria = append(criteria, "gender")
		}
	} else {
		score += genderIndifferentScore
	}

	if r := ParsePriceRange(pref.PriceRange); !r.Open() && r.Contains(provider.SessionPrice) {
		score += priceMatchScore
		criteria = append(criteria, "price")
	}

	if n := intersectionSize(pref.Topics, provider.Topics); n > 0 {
		score += topicWeight * n
		criteria = append(criteria, "topics")
	}

	if n := intersectionSize(pref.Approaches, provider.Approaches); n > 0 {
		score += approachWeight * n
		criteria = append(criteria, "approach")
	}

	if n := intersectionSize(MapPreferenceTags(pref.Practices), provider.Practices); n > 0 {
		score += practiceWeight * n
		criteria = append(criteria, "practices")
	}

	return score, criteria
}

// intersectionSize counts distinct case-insensitive overlaps between two tag sets.
func intersectionSize(wanted, offered []string) int {
	if len(wanted) == 0 || len(offered) == 0 {
		return 0
	}

	available := make(map[string]struct{}, len(offered))
	for _, tag := range offered {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			available[tag] = struct{}{}
		}
	}

	seen := make(map[string]struct{}, len(wanted))
	count := 0
	for _, tag := range wanted {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		if _, ok := available[tag]; ok {
			count++
		}
	}
	return count
}
