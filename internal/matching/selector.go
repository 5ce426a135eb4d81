package matching

import (
	"sort"

	"github.com/carelinkhq/carelink/internal/models"
)

// Tier classifies the quality of a match result set.
type Tier string

const (
	TierIdeal Tier = "ideal"
	TierNear  Tier = "near"
	TierNone  Tier = "none"
)

// Tier thresholds and the result cap applied per selection.
const (
	IdealThreshold = 20
	NearThreshold  = 10
	maxResults     = 3
)

// compromiseNote is shown when only near-tier providers are available.
const compromiseNote = "No provider matched every preference. These are the closest available matches; consider relaxing a criterion."

// RankedProvider pairs a provider with its compatibility score.
type RankedProvider struct {
	Provider models.Provider `json:"provider"`
	Score    int             `json:"score"`
	Criteria []string        `json:"criteria"`
}

// Result is the outcome of a match selection. Absence of matches is a valid
// outcome (TierNone with an empty list), never an error.
type Result struct {
	Tier    Tier             `json:"tier"`
	Matches []RankedProvider `json:"matches"`
	Note    string           `json:"note,omitempty"`
}

// Select scores every provider against the preference vector, ranks the
// survivors and classifies them into a tier. Ordering is deterministic:
// descending score, ties broken by provider ID ascending.
func Select(pref Preference, providers []models.Provider) Result {
	ranked := make([]RankedProvider, 0, len(providers))
	for _, provider := range providers {
		if Excluded(pref, provider) {
			continue
		}
		score, criteria := Score(pref, provider)
		if score <= 0 {
			continue
		}
		ranked = append(ranked, RankedProvider{Provider: provider, Score: score, Criteria: criteria})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Provider.ID < ranked[j].Provider.ID
	})

	if ideal := atOrAbove(ranked, IdealThreshold); len(ideal) > 0 {
		return Result{Tier: TierIdeal, Matches: cap3(ideal)}
	}

	if near := atOrAbove(ranked, NearThreshold); len(near) > 0 {
		return Result{Tier: TierNear, Matches: cap3(near), Note: compromiseNote}
	}

	return Result{Tier: TierNone, Matches: []RankedProvider{}}
}

func atOrAbove(ranked []RankedProvider, threshold int) []RankedProvider {
	// ranked is sorted descending, so the qualifying prefix is contiguous.
	cut := sort.Search(len(ranked), func(i int) bool { return ranked[i].Score < threshold })
	return ranked[:cut]
}

func cap3(ranked []RankedProvider) []RankedProvider {
	if len(ranked) > maxResults {
		return ranked[:maxResults]
	}
	return ranked
}
