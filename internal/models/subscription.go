package models

import (
	"fmt"
	"sort"
)

// DefaultTierName is the tier every unknown or empty subscription_type resolves to.
const DefaultTierName = "basic"

// SubscriptionTier is a named plan with numeric resource limits.
type SubscriptionTier struct {
	Name        string `json:"name"`
	MaxListings int    `json:"max_listings"`
	MaxFeatured int    `json:"max_featured"`
}

// TierTable is the process-wide tier configuration. It is built once at boot
// and never mutated afterwards; share it by value.
type TierTable struct {
	tiers map[string]SubscriptionTier
}

// NewTierTable validates tiers and returns an immutable table.
// A table without a "basic" tier is rejected.
func NewTierTable(tiers ...SubscriptionTier) (TierTable, error) {
	m := make(map[string]SubscriptionTier, len(tiers))
	for _, t := range tiers {
		if t.Name == "" {
			return TierTable{}, &ConfigError{Field: "SUBSCRIPTION_TIERS", Message: "tier name cannot be empty"}
		}
		if _, dup := m[t.Name]; dup {
			return TierTable{}, &ConfigError{Field: "SUBSCRIPTION_TIERS", Message: fmt.Sprintf("tier %q defined twice", t.Name)}
		}
		if t.MaxListings < 0 || t.MaxFeatured < 0 {
			return TierTable{}, &ConfigError{Field: "SUBSCRIPTION_TIERS", Message: fmt.Sprintf("tier %q has a negative limit", t.Name)}
		}
		m[t.Name] = t
	}

	if _, ok := m[DefaultTierName]; !ok {
		return TierTable{}, &ConfigError{Field: "SUBSCRIPTION_TIERS", Message: "a \"basic\" tier is required"}
	}

	return TierTable{tiers: m}, nil
}

// Resolve returns the tier for subscriptionType, falling back to basic when
// the name is empty or unknown.
func (t TierTable) Resolve(subscriptionType string) (SubscriptionTier, error) {
	if tier, ok := t.tiers[subscriptionType]; ok {
		return tier, nil
	}
	basic, ok := t.tiers[DefaultTierName]
	if !ok {
		return SubscriptionTier{}, &ConfigError{Field: "SUBSCRIPTION_TIERS", Message: "no \"basic\" tier is defined"}
	}
	return basic, nil
}

// Has reports whether name is a configured tier.
func (t TierTable) Has(name string) bool {
	_, ok := t.tiers[name]
	return ok
}

// All returns the tiers ordered by MaxListings, then name.
func (t TierTable) All() []SubscriptionTier {
	out := make([]SubscriptionTier, 0, len(t.tiers))
	for _, tier := range t.tiers {
		out = append(out, tier)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MaxListings != out[j].MaxListings {
			return out[i].MaxListings < out[j].MaxListings
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Names returns the configured tier names in All() order.
func (t TierTable) Names() []string {
	tiers := t.All()
	names := make([]string, len(tiers))
	for i, tier := range tiers {
		names[i] = tier.Name
	}
	return names
}
