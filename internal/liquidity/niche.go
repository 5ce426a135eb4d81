// Package liquidity measures supply/demand balance per market niche. A niche
// is the canonical bucket a waitlisted provider application falls into:
// price range plus topic set plus affirmative-practice set.
package liquidity

import (
	"sort"
	"strings"

	"github.com/carelinkhq/carelink/internal/matching"
	"github.com/carelinkhq/carelink/internal/models"
)

// NicheKey is the structural composite key identifying a niche. Set fields
// hold the canonical (sorted, deduplicated, lowercased) rendering so that two
// entries with the same sets compare equal regardless of input order.
type NicheKey struct {
	PriceRange string
	Topics     string
	Practices  string
}

// Niche is a derived demand bucket. It is recomputed on every aggregation
// pass and never persisted.
type Niche struct {
	Key        NicheKey
	PriceLabel string
	Topics     []string
	Practices  []string
	Pending    int
}

// KeyFor builds the canonical key for a waitlist entry.
func KeyFor(entry models.WaitlistEntry) NicheKey {
	return NicheKey{
		PriceRange: canonicalLabel(entry.PriceRangeLabel),
		Topics:     strings.Join(canonicalSet(entry.Topics), "|"),
		Practices:  strings.Join(canonicalSet(entry.Practices), "|"),
	}
}

// Aggregate buckets pending waitlist entries into distinct niches. The first
// entry seen for a key contributes the representative descriptor. The returned
// slice is ordered by key for deterministic processing.
func Aggregate(entries []models.WaitlistEntry) []Niche {
	index := make(map[NicheKey]*Niche)
	for _, entry := range entries {
		key := KeyFor(entry)
		if niche, ok := index[key]; ok {
			niche.Pending++
			continue
		}
		index[key] = &Niche{
			Key:        key,
			PriceLabel: entry.PriceRangeLabel,
			Topics:     canonicalSet(entry.Topics),
			Practices:  canonicalSet(entry.Practices),
			Pending:    1,
		}
	}

	niches := make([]Niche, 0, len(index))
	for _, niche := range index {
		niches = append(niches, *niche)
	}
	sort.Slice(niches, func(i, j int) bool {
		a, b := niches[i].Key, niches[j].Key
		if a.PriceRange != b.PriceRange {
			return a.PriceRange < b.PriceRange
		}
		if a.Topics != b.Topics {
			return a.Topics < b.Topics
		}
		return a.Practices < b.Practices
	})
	return niches
}

// ProviderServes reports whether an active provider covers the niche: the
// session price falls inside the niche's price range and the provider's
// topic and practice sets contain the niche's sets. Containment is "serves
// at least these tags", not exact equality. Price is compared numerically
// rather than by range label on purpose, so providers entered with a raw
// session price and no label still count toward supply.
func ProviderServes(niche Niche, provider models.Provider) bool {
	if provider.Status != models.ProviderActive {
		return false
	}
	if !matching.ParsePriceRange(niche.PriceLabel).Contains(provider.SessionPrice) {
		return false
	}
	return containsAll(provider.Topics, niche.Topics) &&
		containsAll(provider.Practices, niche.Practices)
}

// CountSupply counts active providers serving the niche.
func CountSupply(niche Niche, providers []models.Provider) int {
	count := 0
	for _, provider := range providers {
		if ProviderServes(niche, provider) {
			count++
		}
	}
	return count
}

// EntryBelongs reports whether a waitlist entry falls into the niche.
func EntryBelongs(niche Niche, entry models.WaitlistEntry) bool {
	return KeyFor(entry) == niche.Key
}

func canonicalLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

func canonicalSet(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

func containsAll(offered []string, required []string) bool {
	if len(required) == 0 {
		return true
	}
	available := make(map[string]struct{}, len(offered))
	for _, tag := range offered {
		available[strings.ToLower(strings.TrimSpace(tag))] = struct{}{}
	}
	for _, tag := range required {
		if _, ok := available[tag]; !ok {
			return false
		}
	}
	return true
}
