// Package leveling maps cumulative XP to levels and worlds.
//
// Each level costs round(BaseXP * Growth^(level-2)) XP more than the one before it,
// with every per-level term rounded half-up on its own. Terms are computed with exact
// integer arithmetic so that values like 50*1.15 = 57.5 round to 58 on every platform.
package leveling

import (
	"math/big"
	"sort"
)

const (
	BaseXP        = 50
	MaxLevel      = 50
	WorldInterval = 5
	MaxWorld      = 10

	// Growth is 1.15, stored as a ratio.
	growthNum = 115
	growthDen = 100
)

// thresholds[i] is the cumulative XP required for level i+1.
var thresholds = buildThresholds()

func buildThresholds() []int {
	out := make([]int, MaxLevel)
	num := big.NewInt(BaseXP)
	den := big.NewInt(1)
	gNum := big.NewInt(growthNum)
	gDen := big.NewInt(growthDen)
	two := big.NewInt(2)

	total := 0
	for level := 2; level <= MaxLevel; level++ {
		// round half up: floor((2*num + den) / (2*den))
		n := new(big.Int).Mul(num, two)
		n.Add(n, den)
		d := new(big.Int).Mul(den, two)
		total += int(n.Quo(n, d).Int64())
		out[level-1] = total

		num.Mul(num, gNum)
		den.Mul(den, gDen)
	}
	return out
}

// XPThreshold returns the cumulative XP needed to reach level. Levels below 1 are
// treated as 1 and levels above MaxLevel return the MaxLevel threshold.
func XPThreshold(level int) int {
	if level <= 1 {
		return 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return thresholds[level-1]
}

// LevelForXP returns the highest level whose threshold is <= totalXP.
func LevelForXP(totalXP int) int {
	if totalXP <= 0 {
		return 1
	}
	// first index whose threshold exceeds totalXP
	idx := sort.Search(MaxLevel, func(i int) bool { return thresholds[i] > totalXP })
	return idx
}

// XPToNextLevel returns the XP still missing for the next level, or 0 at MaxLevel.
func XPToNextLevel(totalXP int) int {
	level := LevelForXP(totalXP)
	if level >= MaxLevel {
		return 0
	}
	return max(0, XPThreshold(level+1)-max(totalXP, 0))
}

// ProgressPercent returns progress through the current level as a whole percentage.
func ProgressPercent(totalXP int) int {
	level := LevelForXP(totalXP)
	if level >= MaxLevel {
		return 100
	}
	start := XPThreshold(level)
	span := XPThreshold(level+1) - start
	into := max(totalXP, 0) - start
	// round half up
	return (into*200 + span) / (span * 2)
}

// WorldForLevel returns the world unlocked at level.
func WorldForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return min(MaxWorld, (level-1)/WorldInterval+1)
}

// LevelRequiredForWorld is the first level of world.
func LevelRequiredForWorld(world int) int {
	if world <= 1 {
		return 1
	}
	world = min(world, MaxWorld)
	return (world-1)*WorldInterval + 1
}

// Summary bundles everything derivable from a total XP value.
type Summary struct {
	TotalXP         int
	Level           int
	World           int
	LevelStartXP    int
	NextLevelXP     int
	XPToNextLevel   int
	ProgressPercent int
	MaxLevel        bool
}

// Summarize derives a Summary from totalXP.
func Summarize(totalXP int) Summary {
	level := LevelForXP(totalXP)
	s := Summary{
		TotalXP:         max(totalXP, 0),
		Level:           level,
		World:           WorldForLevel(level),
		LevelStartXP:    XPThreshold(level),
		XPToNextLevel:   XPToNextLevel(totalXP),
		ProgressPercent: ProgressPercent(totalXP),
		MaxLevel:        level >= MaxLevel,
	}
	if !s.MaxLevel {
		s.NextLevelXP = XPThreshold(level + 1)
	}
	return s
}
