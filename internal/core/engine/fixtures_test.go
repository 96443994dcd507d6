package engine

import "github.com/movelens/movelens/internal/core"

func intPtr(v int) *int { return &v }

func newMove(name, typeName string, class core.DamageClass, power, accuracy int) *core.MoveDetail {
	move := &core.MoveDetail{
		Name:        name,
		Type:        core.NamedResource{Name: typeName},
		DamageClass: core.NamedResource{Name: string(class)},
	}
	if power > 0 {
		move.Power = intPtr(power)
	}
	if accuracy > 0 {
		move.Accuracy = intPtr(accuracy)
	}
	return move
}

func statusMove(name, typeName string) *core.MoveDetail {
	return newMove(name, typeName, core.DamageClassStatus, 0, 0)
}

func newPokemon(name string, types []string, hp, atk, def, spa, spd, spe int, moves ...string) *core.PokemonData {
	p := &core.PokemonData{Name: name}
	for i, t := range types {
		p.Types = append(p.Types, core.TypeSlot{Slot: i + 1, Type: core.NamedResource{Name: t}})
	}
	stats := []struct {
		name  string
		value int
	}{
		{core.StatHP, hp},
		{core.StatAttack, atk},
		{core.StatDefense, def},
		{core.StatSpecialAttack, spa},
		{core.StatSpecialDefense, spd},
		{core.StatSpeed, spe},
	}
	for _, s := range stats {
		p.Stats = append(p.Stats, core.StatEntry{BaseStat: s.value, Stat: core.NamedResource{Name: s.name}})
	}
	for _, m := range moves {
		p.Moves = append(p.Moves, core.MoveEntry{Move: core.MoveRef{Name: m, URL: "https://pokeapi.example/api/v2/move/" + m + "/"}})
	}
	return p
}

func scored(name, typeName string, class core.DamageClass, score float64, power int, stab bool, tags ...core.Tag) *core.MoveScore {
	return &core.MoveScore{
		Name:       name,
		Type:       typeName,
		Class:      class,
		Score:      score,
		Tags:       core.Tags(tags),
		IsDamaging: class != core.DamageClassStatus && power > 0,
		IsStab:     stab,
		Power:      power,
		Accuracy:   intPtr(100),
	}
}

func recommendationNames(recs []core.Recommendation) []string {
	names := make([]string, 0, len(recs))
	for _, rec := range recs {
		names = append(names, rec.Name)
	}
	return names
}

func recommendationRoles(recs []core.Recommendation) []string {
	roles := make([]string, 0, len(recs))
	for _, rec := range recs {
		roles = append(roles, rec.RoleTag)
	}
	return roles
}
