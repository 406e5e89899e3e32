package leveling

// World is one stage of the adventure map.
type World struct {
	Number        int
	Name          string
	Description   string
	RequiredLevel int
	Unlocked      bool
	Current       bool
}

var worldThemes = [MaxWorld]struct{ name, description string }{
	{"Starter World", "Your journey begins here"},
	{"Forest Realm", "Nature's embrace"},
	{"Ocean Depths", "Dive into the unknown"},
	{"Waterfall Valley", "Flowing with purpose"},
	{"Mountain Peak", "Reach new heights"},
	{"Volcanic Lands", "Fire and determination"},
	{"Tropical Paradise", "Sunshine and growth"},
	{"Frozen Tundra", "Cool and collected"},
	{"Cosmic Realm", "Beyond the stars"},
	{"Legendary World", "The ultimate challenge"},
}

// WorldMap lists the worlds worth showing to a player in currentWorld: at least
// five, and always the next two locked ones, capped at MaxWorld.
func WorldMap(currentWorld int) []World {
	currentWorld = max(1, min(currentWorld, MaxWorld))
	n := min(MaxWorld, max(5, currentWorld+2))

	out := make([]World, 0, n)
	for w := 1; w <= n; w++ {
		theme := worldThemes[w-1]
		out = append(out, World{
			Number:        w,
			Name:          theme.name,
			Description:   theme.description,
			RequiredLevel: LevelRequiredForWorld(w),
			Unlocked:      w <= currentWorld,
			Current:       w == currentWorld,
		})
	}
	return out
}

// WorldName returns the theme name of world n.
func WorldName(n int) string {
	return worldThemes[max(1, min(n, MaxWorld))-1].name
}
