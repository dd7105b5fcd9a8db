// Package selector turns a free-text workout label and an equipment profile
// into an ordered exercise list drawn from the catalog.
package selector

import (
	"strings"

	"github.com/claude/repflow/internal/catalog"
)

// Implement holds availability and a weight ceiling for one implement type.
type Implement struct {
	Has       bool    `json:"has" yaml:"has"`
	MaxWeight float64 `json:"max_weight" yaml:"max_weight"`
}

// EquipmentProfile describes what the athlete can train with. FullGym short-
// circuits all filtering; otherwise machine exercises are always removed and
// each implement is checked individually.
type EquipmentProfile struct {
	FullGym    bool      `json:"full_gym"`
	Dumbbells  Implement `json:"dumbbells"`
	Barbell    Implement `json:"barbell"`
	Kettlebell Implement `json:"kettlebell"`
	Cables     bool      `json:"cables"`
	PullUpBar  bool      `json:"pullup_bar"`
}

// Modifiers adjust the selected list.
type Modifiers struct {
	FewerSets    bool `json:"fewer_sets"`
	QuickVersion bool `json:"quick_version"`
	CustomBuild  bool `json:"custom_build"`
}

// Group-count scaling: the more groups a label touches, the fewer exercises
// each contributes, so a workout stays a bounded size.
func perGroupCount(groups int) int {
	switch {
	case groups <= 1:
		return 6
	case groups == 2:
		return 4
	default:
		return 3
	}
}

const quickVersionExercises = 4
const cappedSets = 3

// Select builds the exercise list for a workout label. See the catalog for
// group names and keyword mappings. CustomBuild returns an empty list; the
// caller adds exercises interactively.
func Select(label string, eq EquipmentProfile, mods Modifiers) []catalog.Exercise {
	if mods.CustomBuild {
		return []catalog.Exercise{}
	}

	groups := matchGroups(label)
	n := perGroupCount(len(groups))

	var picked []catalog.Exercise
	for _, g := range groups {
		list := catalog.ByGroup(g)
		if len(list) > n {
			list = list[:n]
		}
		picked = append(picked, list...)
	}

	picked = filterByEquipment(picked, eq)
	if len(picked) == 0 {
		picked = catalog.BodyweightFallback()
	}

	for i := range picked {
		picked[i].Default.Weight = capWeight(picked[i], eq)
	}

	if mods.QuickVersion {
		if len(picked) > quickVersionExercises {
			picked = picked[:quickVersionExercises]
		}
		capSets(picked)
	} else if mods.FewerSets {
		capSets(picked)
	}

	return picked
}

// Related returns swap candidates for a label: every exercise in each matched
// group, minus exercises already in the session, de-duplicated by name.
func Related(label string, inSession []string) []catalog.Exercise {
	taken := make(map[string]bool, len(inSession))
	for _, name := range inSession {
		taken[strings.ToLower(name)] = true
	}

	var out []catalog.Exercise
	for _, g := range matchGroups(label) {
		for _, ex := range catalog.ByGroup(g) {
			key := strings.ToLower(ex.Name)
			if taken[key] {
				continue
			}
			taken[key] = true
			out = append(out, ex)
		}
	}
	return out
}

// matchGroups resolves a label to muscle groups: exact group name first, then
// keyword tokens, then the default slice.
func matchGroups(label string) []string {
	for _, g := range catalog.Groups() {
		if strings.EqualFold(strings.TrimSpace(label), g) {
			return []string{g}
		}
	}

	seen := make(map[string]bool)
	var groups []string
	for _, tok := range strings.Fields(strings.ToLower(label)) {
		tok = strings.Trim(tok, ",./&+-")
		for _, g := range catalog.KeywordGroups(tok) {
			if !seen[g] {
				seen[g] = true
				groups = append(groups, g)
			}
		}
	}
	if len(groups) == 0 {
		groups = []string{catalog.GroupShoulders, catalog.GroupBiceps, catalog.GroupTriceps}
	}
	return groups
}

func filterByEquipment(list []catalog.Exercise, eq EquipmentProfile) []catalog.Exercise {
	if eq.FullGym {
		return list
	}
	out := list[:0:0]
	for _, ex := range list {
		if usable(ex, eq) {
			out = append(out, ex)
		}
	}
	return out
}

// usable reports whether any of the exercise's implement tags is available.
// Machine exercises are never usable outside a full gym, even when they also
// carry an available tag.
func usable(ex catalog.Exercise, eq EquipmentProfile) bool {
	if ex.HasTag("machine") {
		return false
	}
	for _, tag := range ex.Tags {
		switch strings.ToLower(tag) {
		case "bodyweight":
			return true
		case "dumbbell":
			if eq.Dumbbells.Has {
				return true
			}
		case "barbell":
			if eq.Barbell.Has {
				return true
			}
		case "kettlebell":
			if eq.Kettlebell.Has {
				return true
			}
		case "cable":
			if eq.Cables {
				return true
			}
		case "pullup bar":
			if eq.PullUpBar {
				return true
			}
		}
	}
	return false
}

// capWeight limits a default suggestion to the profile's ceiling for the
// implement the exercise uses.
func capWeight(ex catalog.Exercise, eq EquipmentProfile) float64 {
	if eq.FullGym {
		return ex.Default.Weight
	}
	w := ex.Default.Weight
	clamp := func(imp Implement) {
		if imp.Has && imp.MaxWeight > 0 && w > imp.MaxWeight {
			w = imp.MaxWeight
		}
	}
	if ex.HasTag("dumbbell") {
		clamp(eq.Dumbbells)
	}
	if ex.HasTag("barbell") {
		clamp(eq.Barbell)
	}
	if ex.HasTag("kettlebell") {
		clamp(eq.Kettlebell)
	}
	return w
}

func capSets(list []catalog.Exercise) {
	for i := range list {
		if list[i].DefaultSets > cappedSets {
			list[i].DefaultSets = cappedSets
		}
	}
}
