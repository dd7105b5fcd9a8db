// Package catalog holds the static exercise table: every known exercise grouped
// by muscle group, with default set counts and starting weight/rep suggestions.
package catalog

import "strings"

// Suggestion is a weight and rep-range recommendation for an exercise.
type Suggestion struct {
	Weight        float64 `json:"weight"`
	RepRangeLabel string  `json:"rep_range_label"`
}

// Exercise is one catalog entry. Tags describe the implement(s) the movement
// needs ("barbell", "dumbbell", "cable", "machine", "pullup bar", "bodyweight",
// "kettlebell") and are matched against the equipment profile by the selector.
type Exercise struct {
	Name        string     `json:"name"`
	MuscleGroup string     `json:"muscle_group"`
	Tags        []string   `json:"tags"`
	DemoRef     string     `json:"demo_ref,omitempty"`
	DefaultSets int        `json:"default_sets"`
	Default     Suggestion `json:"default_suggestion"`
}

// HasTag reports whether the exercise carries the given implement tag.
func (e Exercise) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Muscle group names. Group lookup is case-insensitive but these are the
// canonical display forms.
const (
	GroupChest     = "Chest"
	GroupBack      = "Back"
	GroupShoulders = "Shoulders"
	GroupBiceps    = "Biceps"
	GroupTriceps   = "Triceps"
	GroupLegs      = "Legs"
	GroupGlutes    = "Glutes"
	GroupCore      = "Core"
)

// Groups returns all muscle group names in catalog order.
func Groups() []string {
	return []string{GroupChest, GroupBack, GroupShoulders, GroupBiceps, GroupTriceps, GroupLegs, GroupGlutes, GroupCore}
}

// ByGroup returns the exercises in a muscle group, matched case-insensitively.
// The returned slice is a copy; callers may mutate entries freely.
func ByGroup(group string) []Exercise {
	for name, list := range exercises {
		if strings.EqualFold(name, group) {
			out := make([]Exercise, len(list))
			copy(out, list)
			return out
		}
	}
	return nil
}

// ByName finds a catalog entry by exercise name, case-insensitively.
func ByName(name string) (Exercise, bool) {
	for _, list := range exercises {
		for _, ex := range list {
			if strings.EqualFold(ex.Name, name) {
				return ex, true
			}
		}
	}
	return Exercise{}, false
}

// KeywordGroups maps a lowercased token from a free-text workout label to the
// muscle groups it covers.
func KeywordGroups(token string) []string {
	return keywords[strings.ToLower(token)]
}

// BodyweightFallback returns the no-equipment list substituted when equipment
// filtering empties a workout. Always non-empty.
func BodyweightFallback() []Exercise {
	out := make([]Exercise, len(bodyweightFallback))
	copy(out, bodyweightFallback)
	return out
}

var keywords = map[string][]string{
	"push":       {GroupChest, GroupShoulders, GroupTriceps},
	"pull":       {GroupBack, GroupBiceps},
	"legs":       {GroupLegs, GroupGlutes},
	"leg":        {GroupLegs, GroupGlutes},
	"lower":      {GroupLegs, GroupGlutes},
	"upper":      {GroupChest, GroupBack, GroupShoulders},
	"full":       {GroupChest, GroupBack, GroupLegs},
	"body":       {GroupChest, GroupBack, GroupLegs},
	"chest":      {GroupChest},
	"back":       {GroupBack},
	"shoulders":  {GroupShoulders},
	"shoulder":   {GroupShoulders},
	"delts":      {GroupShoulders},
	"arms":       {GroupBiceps, GroupTriceps},
	"arm":        {GroupBiceps, GroupTriceps},
	"biceps":     {GroupBiceps},
	"triceps":    {GroupTriceps},
	"glutes":     {GroupGlutes},
	"quads":      {GroupLegs},
	"hamstrings": {GroupLegs},
	"core":       {GroupCore},
	"abs":        {GroupCore},
}

var exercises = map[string][]Exercise{
	GroupChest: {
		{Name: "Barbell Bench Press", MuscleGroup: GroupChest, Tags: []string{"barbell"}, DefaultSets: 4, Default: Suggestion{Weight: 135, RepRangeLabel: "6-10"}},
		{Name: "Incline Dumbbell Press", MuscleGroup: GroupChest, Tags: []string{"dumbbell"}, DefaultSets: 3, Default: Suggestion{Weight: 50, RepRangeLabel: "8-12"}},
		{Name: "Cable Fly", MuscleGroup: GroupChest, Tags: []string{"cable"}, DefaultSets: 3, Default: Suggestion{Weight: 30, RepRangeLabel: "12-15"}},
		{Name: "Chest Press Machine", MuscleGroup: GroupChest, Tags: []string{"machine"}, DefaultSets: 3, Default: Suggestion{Weight: 100, RepRangeLabel: "8-12"}},
		{Name: "Push-Up", MuscleGroup: GroupChest, Tags: []string{"bodyweight"}, DefaultSets: 3, Default: Suggestion{Weight: 0, RepRangeLabel: "to failure"}},
		{Name: "Dumbbell Fly", MuscleGroup: GroupChest, Tags: []string{"dumbbell"}, DefaultSets: 3, Default: Suggestion{Weight: 25, RepRangeLabel: "10-15"}},
	},
	GroupBack: {
		{Name: "Deadlift", MuscleGroup: GroupBack, Tags: []string{"barbell"}, DefaultSets: 4, Default: Suggestion{Weight: 185, RepRangeLabel: "4-6"}},
		{Name: "Pull-Up", MuscleGroup: GroupBack, Tags: []string{"pullup bar", "bodyweight"}, DefaultSets: 3, Default: Suggestion{Weight: 0, RepRangeLabel: "to failure"}},
		{Name: "Bent-Over Barbell Row", MuscleGroup: GroupBack, Tags: []string{"barbell"}, DefaultSets: 4, Default: Suggestion{Weight: 115, RepRangeLabel: "6-10"}},
		{Name: "Lat Pulldown", MuscleGroup: GroupBack, Tags: []string{"cable", "machine"}, DefaultSets: 3, Default: Suggestion{Weight: 100, RepRangeLabel: "8-12"}},
		{Name: "Seated Cable Row", MuscleGroup: GroupBack, Tags: []string{"cable"}, DefaultSets: 3, Default: Suggestion{Weight: 110, RepRangeLabel: "8-12"}},
		{Name: "Single-Arm Dumbbell Row", MuscleGroup: GroupBack, Tags: []string{"dumbbell"}, DefaultSets: 3, Default: Suggestion{Weight: 45, RepRangeLabel: "8-12"}},
	},
	GroupShoulders: {
		{Name: "Overhead Barbell Press", MuscleGroup: GroupShoulders, Tags: []string{"barbell"}, DefaultSets: 4, Default: Suggestion{Weight: 85, RepRangeLabel: "6-10"}},
		{Name: "Seated Dumbbell Press", MuscleGroup: GroupShoulders, Tags: []string{"dumbbell"}, DefaultSets: 3, Default: Suggestion{Weight: 40, RepRangeLabel: "8-12"}},
		{Name: "Lateral Raise", MuscleGroup: GroupShoulders, Tags: []string{"dumbbell"}, DefaultSets: 3, Default: Suggestion{Weight: 15, RepRangeLabel: "12-15"}},
		{Name: "Face Pull", MuscleGroup: GroupShoulders, Tags: []string{"cable"}, DefaultSets: 3, Default: Suggestion{Weight: 40, RepRangeLabel: "12-15"}},
		{Name: "Shoulder Press Machine", MuscleGroup: GroupShoulders, Tags: []string{"machine"}, DefaultSets: 3, Default: Suggestion{Weight: 70, RepRangeLabel: "8-12"}},
		{Name: "Pike Push-Up", MuscleGroup: GroupShoulders, Tags: []string{"bodyweight"}, DefaultSets: 3, Default: Suggestion{Weight: 0, RepRangeLabel: "to failure"}},
	},
	GroupBiceps: {
		{Name: "Barbell Curl", MuscleGroup: GroupBiceps, Tags: []string{"barbell"}, DefaultSets: 3, Default: Suggestion{Weight: 55, RepRangeLabel: "8-12"}},
		{Name: "Dumbbell Hammer Curl", MuscleGroup: GroupBiceps, Tags: []string{"dumbbell"}, DefaultSets: 3, Default: Suggestion{Weight: 25, RepRangeLabel: "10-12"}},
		{Name: "Cable Curl", MuscleGroup: GroupBiceps, Tags: []string{"cable"}, DefaultSets: 3, Default: Suggestion{Weight: 40, RepRangeLabel: "10-15"}},
		{Name: "Preacher Curl Machine", MuscleGroup: GroupBiceps, Tags: []string{"machine"}, DefaultSets: 3, Default: Suggestion{Weight: 50, RepRangeLabel: "10-12"}},
		{Name: "Chin-Up", MuscleGroup: GroupBiceps, Tags: []string{"pullup bar", "bodyweight"}, DefaultSets: 3, Default: Suggestion{Weight: 0, RepRangeLabel: "to failure"}},
		{Name: "Incline Dumbbell Curl", MuscleGroup: GroupBiceps, Tags: []string{"dumbbell"}, DefaultSets: 3, Default: Suggestion{Weight: 20, RepRangeLabel: "10-12"}},
	},
	GroupTriceps: {
		{Name: "Close-Grip Bench Press", MuscleGroup: GroupTriceps, Tags: []string{"barbell"}, DefaultSets: 3, Default: Suggestion{Weight: 105, RepRangeLabel: "8-10"}},
		{Name: "Cable Pushdown", MuscleGroup: GroupTriceps, Tags: []string{"cable"}, DefaultSets: 3, Default: Suggestion{Weight: 50, RepRangeLabel: "10-15"}},
		{Name: "Overhead Dumbbell Extension", MuscleGroup: GroupTriceps, Tags: []string{"dumbbell"}, DefaultSets: 3, Default: Suggestion{Weight: 35, RepRangeLabel: "10-12"}},
		{Name: "Dip", MuscleGroup: GroupTriceps, Tags: []string{"bodyweight"}, DefaultSets: 3, Default: Suggestion{Weight: 0, RepRangeLabel: "to failure"}},
		{Name: "Triceps Extension Machine", MuscleGroup: GroupTriceps, Tags: []string{"machine"}, DefaultSets: 3, Default: Suggestion{Weight: 60, RepRangeLabel: "10-12"}},
		{Name: "Skull Crusher", MuscleGroup: GroupTriceps, Tags: []string{"barbell"}, DefaultSets: 3, Default: Suggestion{Weight: 45, RepRangeLabel: "8-12"}},
	},
	GroupLegs: {
		{Name: "Barbell Back Squat", MuscleGroup: GroupLegs, Tags: []string{"barbell"}, DefaultSets: 4, Default: Suggestion{Weight: 165, RepRangeLabel: "5-8"}},
		{Name: "Leg Press", MuscleGroup: GroupLegs, Tags: []string{"machine"}, DefaultSets: 4, Default: Suggestion{Weight: 270, RepRangeLabel: "8-12"}},
		{Name: "Romanian Deadlift", MuscleGroup: GroupLegs, Tags: []string{"barbell"}, DefaultSets: 3, Default: Suggestion{Weight: 135, RepRangeLabel: "8-10"}},
		{Name: "Goblet Squat", MuscleGroup: GroupLegs, Tags: []string{"dumbbell", "kettlebell"}, DefaultSets: 3, Default: Suggestion{Weight: 50, RepRangeLabel: "10-12"}},
		{Name: "Leg Extension", MuscleGroup: GroupLegs, Tags: []string{"machine"}, DefaultSets: 3, Default: Suggestion{Weight: 90, RepRangeLabel: "12-15"}},
		{Name: "Walking Lunge", MuscleGroup: GroupLegs, Tags: []string{"dumbbell", "bodyweight"}, DefaultSets: 3, Default: Suggestion{Weight: 25, RepRangeLabel: "10-12"}},
	},
	GroupGlutes: {
		{Name: "Barbell Hip Thrust", MuscleGroup: GroupGlutes, Tags: []string{"barbell"}, DefaultSets: 4, Default: Suggestion{Weight: 185, RepRangeLabel: "8-12"}},
		{Name: "Bulgarian Split Squat", MuscleGroup: GroupGlutes, Tags: []string{"dumbbell", "bodyweight"}, DefaultSets: 3, Default: Suggestion{Weight: 30, RepRangeLabel: "8-12"}},
		{Name: "Cable Kickback", MuscleGroup: GroupGlutes, Tags: []string{"cable"}, DefaultSets: 3, Default: Suggestion{Weight: 25, RepRangeLabel: "12-15"}},
		{Name: "Glute Bridge", MuscleGroup: GroupGlutes, Tags: []string{"bodyweight"}, DefaultSets: 3, Default: Suggestion{Weight: 0, RepRangeLabel: "15-20"}},
		{Name: "Kettlebell Swing", MuscleGroup: GroupGlutes, Tags: []string{"kettlebell"}, DefaultSets: 3, Default: Suggestion{Weight: 35, RepRangeLabel: "15-20"}},
		{Name: "Hip Abduction Machine", MuscleGroup: GroupGlutes, Tags: []string{"machine"}, DefaultSets: 3, Default: Suggestion{Weight: 90, RepRangeLabel: "12-15"}},
	},
	GroupCore: {
		{Name: "Plank", MuscleGroup: GroupCore, Tags: []string{"bodyweight"}, DefaultSets: 3, Default: Suggestion{Weight: 0, RepRangeLabel: "45-60s"}},
		{Name: "Hanging Leg Raise", MuscleGroup: GroupCore, Tags: []string{"pullup bar", "bodyweight"}, DefaultSets: 3, Default: Suggestion{Weight: 0, RepRangeLabel: "10-15"}},
		{Name: "Cable Crunch", MuscleGroup: GroupCore, Tags: []string{"cable"}, DefaultSets: 3, Default: Suggestion{Weight: 60, RepRangeLabel: "12-15"}},
		{Name: "Russian Twist", MuscleGroup: GroupCore, Tags: []string{"dumbbell", "bodyweight"}, DefaultSets: 3, Default: Suggestion{Weight: 15, RepRangeLabel: "20"}},
		{Name: "Ab Wheel Rollout", MuscleGroup: GroupCore, Tags: []string{"bodyweight"}, DefaultSets: 3, Default: Suggestion{Weight: 0, RepRangeLabel: "8-12"}},
		{Name: "Dead Bug", MuscleGroup: GroupCore, Tags: []string{"bodyweight"}, DefaultSets: 3, Default: Suggestion{Weight: 0, RepRangeLabel: "10-12"}},
	},
}

var bodyweightFallback = []Exercise{
	{Name: "Push-Up", MuscleGroup: GroupChest, Tags: []string{"bodyweight"}, DefaultSets: 3, Default: Suggestion{Weight: 0, RepRangeLabel: "to failure"}},
	{Name: "Pike Push-Up", MuscleGroup: GroupShoulders, Tags: []string{"bodyweight"}, DefaultSets: 3, Default: Suggestion{Weight: 0, RepRangeLabel: "to failure"}},
	{Name: "Glute Bridge", MuscleGroup: GroupGlutes, Tags: []string{"bodyweight"}, DefaultSets: 3, Default: Suggestion{Weight: 0, RepRangeLabel: "15-20"}},
	{Name: "Walking Lunge", MuscleGroup: GroupLegs, Tags: []string{"bodyweight"}, DefaultSets: 3, Default: Suggestion{Weight: 0, RepRangeLabel: "10-12"}},
	{Name: "Plank", MuscleGroup: GroupCore, Tags: []string{"bodyweight"}, DefaultSets: 3, Default: Suggestion{Weight: 0, RepRangeLabel: "45-60s"}},
}
