package persona

import (
	"github.com/BaSui01/userboard/types"
)

// archetype buckets a cluster into a user stereotype that drives the
// demographic template pools.
type archetype string

const (
	archetypeFrustrated archetype = "frustrated_user"
	archetypePower      archetype = "power_user"
	archetypeCasual     archetype = "casual_user"
	archetypeValue      archetype = "value_seeker"
)

// classifyArchetype maps cluster heuristics to an archetype. Strongly
// negative clusters dominated by bug or performance complaints read as
// frustrated users; monetization complaints as value seekers; feature
// demand with workable sentiment as power users; the rest as casual.
func classifyArchetype(c types.Cluster) archetype {
	top := topCategory(c)

	switch {
	case top == types.CategoryMonetization:
		return archetypeValue
	case c.AverageSentiment < -0.2 || c.AverageRating < 2.5:
		return archetypeFrustrated
	case top == types.CategoryFunctionality || top == types.CategorySyncBackup:
		return archetypePower
	case c.AverageSentiment > 0.2 && c.AverageRating >= 4:
		return archetypeCasual
	default:
		return archetypePower
	}
}

// topCategory returns the highest-priority feature signal category, or
// "" when the cluster produced no signals.
func topCategory(c types.Cluster) types.FeatureCategory {
	if len(c.FeatureRequests) == 0 {
		return ""
	}
	return c.FeatureRequests[0].Category
}

// demographic template pools, keyed by archetype. Picks are made with a
// deterministic index derived from the source cluster ID.
type templatePool struct {
	names         []string
	ages          []int
	roles         []string
	locations     []string
	usagePatterns []string
}

var pools = map[archetype]templatePool{
	archetypeFrustrated: {
		names:     []string{"Marcus", "Elena", "Viktor", "Dana"},
		ages:      []int{34, 41, 29, 38},
		roles:     []string{"operations manager", "accountant", "sales rep", "teacher"},
		locations: []string{"Chicago", "Berlin", "Warsaw", "Austin"},
		usagePatterns: []string{
			"daily use for work tasks, abandons the app after each failure",
			"relies on the app during commutes and loses work when it misbehaves",
		},
	},
	archetypePower: {
		names:     []string{"Priya", "Tomas", "Jae", "Ingrid"},
		ages:      []int{27, 31, 36, 24},
		roles:     []string{"software engineer", "product designer", "data analyst", "freelancer"},
		locations: []string{"Bangalore", "Prague", "Seoul", "Oslo"},
		usagePatterns: []string{
			"heavy daily use across devices, pushes every advanced feature",
			"integrates the app into a larger workflow and scripts around gaps",
		},
	},
	archetypeCasual: {
		names:     []string{"Sofia", "Liam", "Mei", "Carlos"},
		ages:      []int{22, 45, 33, 52},
		roles:     []string{"student", "nurse", "shop owner", "retiree"},
		locations: []string{"Madrid", "Dublin", "Taipei", "Lisbon"},
		usagePatterns: []string{
			"opens the app a few times a week for quick tasks",
			"weekend use only, values simplicity over depth",
		},
	},
	archetypeValue: {
		names:     []string{"Ahmed", "Nina", "Pavel", "Grace"},
		ages:      []int{30, 26, 44, 39},
		roles:     []string{"small business owner", "graduate student", "contractor", "parent"},
		locations: []string{"Cairo", "Kyiv", "Brno", "Manila"},
		usagePatterns: []string{
			"uses the free tier daily and weighs every paid prompt",
			"compares against free alternatives whenever a paywall appears",
		},
	},
}

// painPhrases renders a feature category as a first-person pain point.
var painPhrases = map[types.FeatureCategory]string{
	types.CategoryUI:            "the interface is confusing and hard to navigate",
	types.CategoryFunctionality: "key features I need are missing or half-built",
	types.CategoryPerformance:   "the app is slow and drains my battery",
	types.CategoryBugReports:    "the app crashes or breaks at the worst moments",
	types.CategorySyncBackup:    "my data does not sync reliably between devices",
	types.CategoryMonetization:  "too much is locked behind ads and subscriptions",
	types.CategoryActivation:    "signing in and getting started is a constant struggle",
}

// needPhrases renders a feature category as a forward-looking need.
var needPhrases = map[types.FeatureCategory]string{
	types.CategoryUI:            "a cleaner, more predictable interface",
	types.CategoryFunctionality: "the missing capabilities finished and shipped",
	types.CategoryPerformance:   "the app to feel fast and light",
	types.CategoryBugReports:    "stability I can depend on every day",
	types.CategorySyncBackup:    "sync and backup that just work",
	types.CategoryMonetization:  "fair pricing with a usable free tier",
	types.CategoryActivation:    "a login flow that never gets in my way",
}
