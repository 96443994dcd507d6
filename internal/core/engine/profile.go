package engine

import "github.com/movelens/movelens/internal/core"

// StatLine is the subset of base stats the profile depends on.
type StatLine struct {
	HP             int
	Attack         int
	Defense        int
	SpecialAttack  int
	SpecialDefense int
	Speed          int
}

// StatLineFor reads the stat line from a species, missing stats read as 0.
func StatLineFor(pokemon *core.PokemonData) StatLine {
	return StatLine{
		HP:             pokemon.BaseStat(core.StatHP),
		Attack:         pokemon.BaseStat(core.StatAttack),
		Defense:        pokemon.BaseStat(core.StatDefense),
		SpecialAttack:  pokemon.BaseStat(core.StatSpecialAttack),
		SpecialDefense: pokemon.BaseStat(core.StatSpecialDefense),
		Speed:          pokemon.BaseStat(core.StatSpeed),
	}
}

// Bulk is hp + defense + special-defense.
func (s StatLine) Bulk() int {
	return s.HP + s.Defense + s.SpecialDefense
}

// ClassifyProfile derives the battle profile from a stat line.
func ClassifyProfile(stats StatLine, tuning core.Tuning) core.BattleProfile {
	tuning = tuning.WithDefaults()

	bias := core.BiasMixed
	switch {
	case stats.Attack > stats.SpecialAttack+tuning.Margin():
		bias = core.BiasPhysical
	case stats.SpecialAttack > stats.Attack+tuning.Margin():
		bias = core.BiasSpecial
	}

	bulk := stats.Bulk()
	return core.BattleProfile{
		OffensiveBias: bias,
		Speed:         stats.Speed,
		Bulk:          bulk,
		IsSweeper:     stats.Speed >= tuning.SweeperSpeed,
		IsTank:        bulk >= tuning.TankBulk,
	}
}
