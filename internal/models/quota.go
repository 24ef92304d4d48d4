package models

import "fmt"

// QuotaAction identifies a mutating action the quota enforcer may gate.
type QuotaAction string

const (
	QuotaActionAddListing     QuotaAction = "addListing"
	QuotaActionFeatureListing QuotaAction = "featureListing"
)

// Deny reasons
const (
	ReasonListingLimitReached  = "plan listing limit reached"
	ReasonFeaturedForbidden    = "plan forbids featured listings"
	ReasonFeaturedLimitReached = "plan featured limit reached"
)

// Decision is the outcome of a quota check. A Deny is a policy decision, not an error.
type Decision struct {
	Allowed bool
	Action  QuotaAction
	Tier    string
	Reason  string
	Limit   int
	Used    int64
}

// Allow returns an allowing decision.
func Allow(action QuotaAction, tier string) Decision {
	return Decision{Allowed: true, Action: action, Tier: tier}
}

// Deny returns a denying decision.
func Deny(action QuotaAction, tier, reason string, limit int, used int64) Decision {
	return Decision{Action: action, Tier: tier, Reason: reason, Limit: limit, Used: used}
}

// Code is the machine-readable code for a denial.
func (d Decision) Code() string {
	switch d.Reason {
	case ReasonFeaturedForbidden:
		return "plan_feature_unavailable"
	case ReasonListingLimitReached, ReasonFeaturedLimitReached:
		return "quota_exceeded"
	default:
		return ""
	}
}

// Message is the user-facing explanation for a denial. It always names the limit.
func (d Decision) Message() string {
	switch d.Reason {
	case ReasonListingLimitReached:
		return fmt.Sprintf("%s: your %s plan allows %d active listings", d.Reason, d.Tier, d.Limit)
	case ReasonFeaturedForbidden:
		return fmt.Sprintf("%s: your %s plan allows %d featured listings, upgrade to feature a listing", d.Reason, d.Tier, d.Limit)
	case ReasonFeaturedLimitReached:
		return fmt.Sprintf("%s: your %s plan allows %d featured listings at a time", d.Reason, d.Tier, d.Limit)
	case "":
		return "allowed"
	default:
		return fmt.Sprintf("%s (limit %d)", d.Reason, d.Limit)
	}
}

// QuotaUsage is a user's current consumption against their tier limits.
type QuotaUsage struct {
	Tier          string `json:"tier"`
	ListingsUsed  int64  `json:"listings_used"`
	ListingsLimit int    `json:"listings_limit"`
	FeaturedUsed  int64  `json:"featured_used"`
	FeaturedLimit int    `json:"featured_limit"`
}
