package core

import "strings"

// DamageClass identifies how a move deals damage.
type DamageClass string

const (
	DamageClassPhysical DamageClass = "physical"
	DamageClassSpecial  DamageClass = "special"
	DamageClassStatus   DamageClass = "status"
)

// OffensiveBias reports which attacking stat a species leans on.
type OffensiveBias string

const (
	BiasPhysical OffensiveBias = "physical"
	BiasSpecial  OffensiveBias = "special"
	BiasMixed    OffensiveBias = "mixed"
)

// Stat names as reported by PokeAPI.
const (
	StatHP             = "hp"
	StatAttack         = "attack"
	StatDefense        = "defense"
	StatSpecialAttack  = "special-attack"
	StatSpecialDefense = "special-defense"
	StatSpeed          = "speed"
)

// NamedResource is a PokeAPI name/url pair.
type NamedResource struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
}

// MoveRef references a learnable move.
type MoveRef = NamedResource

// TypeSlot is one of a species' types.
type TypeSlot struct {
	Slot int           `json:"slot"`
	Type NamedResource `json:"type"`
}

// StatEntry is a single base stat.
type StatEntry struct {
	BaseStat int           `json:"base_stat"`
	Effort   int           `json:"effort"`
	Stat     NamedResource `json:"stat"`
}

// MoveEntry wraps a learnable move reference.
type MoveEntry struct {
	Move MoveRef `json:"move"`
}

// AbilitySlot is one of a species' abilities.
type AbilitySlot struct {
	Ability  NamedResource `json:"ability"`
	IsHidden bool          `json:"is_hidden"`
	Slot     int           `json:"slot"`
}

// PokemonData is the species bundle consumed by the engine.
type PokemonData struct {
	ID        int           `json:"id"`
	Name      string        `json:"name"`
	Types     []TypeSlot    `json:"types"`
	Stats     []StatEntry   `json:"stats"`
	Moves     []MoveEntry   `json:"moves"`
	Abilities []AbilitySlot `json:"abilities,omitempty"`
}

// TypeNames returns the species' type names in slot order.
func (p *PokemonData) TypeNames() []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, len(p.Types))
	for _, slot := range p.Types {
		name := strings.ToLower(strings.TrimSpace(slot.Type.Name))
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// BaseStat returns the named base stat, or 0 when absent.
func (p *PokemonData) BaseStat(name string) int {
	if p == nil {
		return 0
	}
	for _, entry := range p.Stats {
		if entry.Stat.Name == name {
			return entry.BaseStat
		}
	}
	return 0
}

// MoveRefs flattens the learnable move list.
func (p *PokemonData) MoveRefs() []MoveRef {
	if p == nil {
		return nil
	}
	refs := make([]MoveRef, 0, len(p.Moves))
	for _, entry := range p.Moves {
		refs = append(refs, entry.Move)
	}
	return refs
}

// MoveMeta carries drain and healing percentages.
type MoveMeta struct {
	Drain   int `json:"drain"`
	Healing int `json:"healing"`
}

// EffectEntry is a localized effect description.
type EffectEntry struct {
	Effect      string        `json:"effect"`
	ShortEffect string        `json:"short_effect"`
	Language    NamedResource `json:"language"`
}

// MoveDetail is the per-move payload from the move detail provider.
type MoveDetail struct {
	ID            int           `json:"id"`
	Name          string        `json:"name"`
	Power         *int          `json:"power"`
	Accuracy      *int          `json:"accuracy"`
	PP            *int          `json:"pp,omitempty"`
	Priority      int           `json:"priority"`
	DamageClass   NamedResource `json:"damage_class"`
	Type          NamedResource `json:"type"`
	Meta          *MoveMeta     `json:"meta"`
	EffectEntries []EffectEntry `json:"effect_entries"`
}

// TypeName returns the move type, defaulting to normal.
func (m *MoveDetail) TypeName() string {
	if m == nil {
		return "normal"
	}
	name := strings.ToLower(strings.TrimSpace(m.Type.Name))
	if name == "" {
		return "normal"
	}
	return name
}

// PowerValue returns the move power, 0 when unset.
func (m *MoveDetail) PowerValue() int {
	if m == nil || m.Power == nil {
		return 0
	}
	return *m.Power
}

// Class returns the damage class.
func (m *MoveDetail) Class() DamageClass {
	if m == nil {
		return ""
	}
	return DamageClass(strings.ToLower(strings.TrimSpace(m.DamageClass.Name)))
}

// EnglishEffect returns the English short effect, if any.
func (m *MoveDetail) EnglishEffect() string {
	if m == nil {
		return ""
	}
	for _, entry := range m.EffectEntries {
		if entry.Language.Name == "en" {
			return strings.TrimSpace(entry.ShortEffect)
		}
	}
	return ""
}

// BattleProfile is derived from base stats.
type BattleProfile struct {
	OffensiveBias OffensiveBias `json:"offensiveBias" yaml:"offensive_bias"`
	Speed         int           `json:"speed" yaml:"speed"`
	Bulk          int           `json:"bulk" yaml:"bulk"`
	IsSweeper     bool          `json:"isSweeper" yaml:"is_sweeper"`
	IsTank        bool          `json:"isTank" yaml:"is_tank"`
}

// Tag labels a scored move for set building.
type Tag string

const (
	TagStab     Tag = "stab"
	TagPriority Tag = "priority"
	TagDrain    Tag = "drain"
	TagSetup    Tag = "setup"
	TagUtility  Tag = "utility"
	TagHazard   Tag = "hazard"
	TagRemoval  Tag = "removal"
	TagTaunt    Tag = "taunt"
	TagStatus   Tag = "status"
	TagScreen   Tag = "screen"
	TagRecovery Tag = "recovery"
	TagCoverage Tag = "coverage"
)

// Tags is an insertion-ordered set of tags.
type Tags []Tag

// Has reports whether the tag is present.
func (t Tags) Has(tag Tag) bool {
	for _, existing := range t {
		if existing == tag {
			return true
		}
	}
	return false
}

// HasAny reports whether any of the tags are present.
func (t Tags) HasAny(tags ...Tag) bool {
	for _, tag := range tags {
		if t.Has(tag) {
			return true
		}
	}
	return false
}

// Add appends the tag unless already present.
func (t Tags) Add(tag Tag) Tags {
	if t.Has(tag) {
		return t
	}
	return append(t, tag)
}

// MoveScore is the scored view of one move.
type MoveScore struct {
	Move            *MoveDetail `json:"-"`
	Name            string      `json:"name"`
	Type            string      `json:"type"`
	Class           DamageClass `json:"damage_class"`
	Score           float64     `json:"score"`
	Tags            Tags        `json:"tags"`
	IsDamaging      bool        `json:"is_damaging"`
	IsStab          bool        `json:"is_stab"`
	Power           int         `json:"power"`
	Accuracy        *int        `json:"accuracy,omitempty"`
	CoverageTargets []string    `json:"coverage_targets,omitempty"`
	EnglishEffect   string      `json:"english_effect,omitempty"`
}

// Recommendation is a rendered move-set slot.
type Recommendation struct {
	Name    string `json:"name" yaml:"name"`
	Type    string `json:"type" yaml:"type"`
	RoleTag string `json:"roleTag" yaml:"role_tag"`
	Reason  string `json:"reason" yaml:"reason"`
}

// CompetitiveMoveSets holds the four role sets. Each has 0 or 4 entries.
type CompetitiveMoveSets struct {
	Sweeper     []Recommendation `json:"sweeper" yaml:"sweeper"`
	Wallbreaker []Recommendation `json:"wallbreaker" yaml:"wallbreaker"`
	Tank        []Recommendation `json:"tank" yaml:"tank"`
	Support     []Recommendation `json:"support" yaml:"support"`
}

// EmptyMoveSets returns sets with non-nil empty slices.
func EmptyMoveSets() CompetitiveMoveSets {
	return CompetitiveMoveSets{
		Sweeper:     []Recommendation{},
		Wallbreaker: []Recommendation{},
		Tank:        []Recommendation{},
		Support:     []Recommendation{},
	}
}

// IsEmpty reports whether every role set is empty.
func (s CompetitiveMoveSets) IsEmpty() bool {
	return len(s.Sweeper) == 0 && len(s.Wallbreaker) == 0 && len(s.Tank) == 0 && len(s.Support) == 0
}

// Roles returns the role sets in display order.
func (s CompetitiveMoveSets) Roles() []RoleSet {
	return []RoleSet{
		{Role: "sweeper", Moves: s.Sweeper},
		{Role: "wallbreaker", Moves: s.Wallbreaker},
		{Role: "tank", Moves: s.Tank},
		{Role: "support", Moves: s.Support},
	}
}

// RoleSet pairs a role name with its moves.
type RoleSet struct {
	Role  string
	Moves []Recommendation
}

// SpeciesAnalysis is the full result for one species.
type SpeciesAnalysis struct {
	Species     string              `json:"species" yaml:"species"`
	Types       []string            `json:"types" yaml:"types"`
	Profile     BattleProfile       `json:"profile" yaml:"profile"`
	Weaknesses  []string            `json:"weaknesses" yaml:"weaknesses"`
	Candidates  int                 `json:"candidates" yaml:"candidates"`
	Viable      int                 `json:"viable" yaml:"viable"`
	MoveSets    CompetitiveMoveSets `json:"movesets" yaml:"movesets"`
	Provenance  Provenance          `json:"provenance" yaml:"provenance"`
	Unavailable bool                `json:"unavailable,omitempty" yaml:"unavailable,omitempty"`
	Message     string              `json:"message,omitempty" yaml:"message,omitempty"`
}
