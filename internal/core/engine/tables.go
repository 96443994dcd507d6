package engine

import "github.com/movelens/movelens/internal/core"

// Additive scoring weights.
const (
	stabBonus       = 25.0
	biasBonus       = 10.0
	priorityBonus   = 25.0
	recoilPenalty   = -10.0
	drainBonus      = 15.0
	recoveryBonus   = 50.0
	leechSeedBonus  = 35.0
	coverageBonus   = 15.0
	defaultAccuracy = 0.85
	leechSeedMove   = "leech-seed"
)

type utilityBonus struct {
	Tag   core.Tag
	Bonus float64
}

var setupBonuses = map[string]float64{
	"swords-dance": 60,
	"dragon-dance": 60,
	"nasty-plot":   60,
	"calm-mind":    45,
	"bulk-up":      45,
}

var utilityBonuses = map[string]utilityBonus{
	"stealth-rock": {Tag: core.TagHazard, Bonus: 70},
	"spikes":       {Tag: core.TagHazard, Bonus: 50},
	"defog":        {Tag: core.TagRemoval, Bonus: 40},
	"rapid-spin":   {Tag: core.TagRemoval, Bonus: 40},
	"taunt":        {Tag: core.TagTaunt, Bonus: 30},
	"will-o-wisp":  {Tag: core.TagStatus, Bonus: 30},
	"toxic":        {Tag: core.TagStatus, Bonus: 30},
	"light-screen": {Tag: core.TagScreen, Bonus: 35},
	"reflect":      {Tag: core.TagScreen, Bonus: 35},
}

var reliableRecovery = map[string]struct{}{
	"recover":       {},
	"roost":         {},
	"soft-boiled":   {},
	"slack-off":     {},
	"milk-drink":    {},
	"wish":          {},
	"synthesis":     {},
	"moonlight":     {},
	"morning-sun":   {},
	"shore-up":      {},
	"strength-sap":  {},
	"heal-order":    {},
	"oblivion-wing": {},
	"purify":        {},
	"pollen-puff":   {},
	"rest":          {},
}

// roleTagOrder decides which tag names a recommendation.
var roleTagOrder = []core.Tag{
	core.TagSetup,
	core.TagRecovery,
	core.TagHazard,
	core.TagRemoval,
	core.TagTaunt,
	core.TagStatus,
	core.TagCoverage,
	core.TagPriority,
	core.TagStab,
}

// supportTagOrder is the first pass of the support builder.
var supportTagOrder = []core.Tag{
	core.TagHazard,
	core.TagRemoval,
	core.TagTaunt,
	core.TagScreen,
}
