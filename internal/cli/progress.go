package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/habitquest/internal/leveling"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/templates"
	"github.com/julianstephens/habitquest/internal/tracker"
)

type ProgressCmd struct {
	Worlds bool `help:"Show the world map."`
}

func (c *ProgressCmd) Run(ctx *Context) error {
	tr, err := ctx.Tracker()
	if err != nil {
		return err
	}
	_, s, err := tr.Progress()
	if err != nil {
		return err
	}

	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(30))
	ctx.printf("Level %d  World %d: %s\n", s.Level, s.World, leveling.WorldName(s.World))
	ctx.printf("%s  %d%%\n", bar.ViewAs(float64(s.ProgressPercent)/100), s.ProgressPercent)
	ctx.printf("Total XP: %s\n", humanize.Comma(int64(s.TotalXP)))
	if s.MaxLevel {
		ctx.println("Max level reached")
	} else {
		ctx.printf("%s XP to level %d (at %s XP)\n",
			humanize.Comma(int64(s.XPToNextLevel)), s.Level+1, humanize.Comma(int64(s.NextLevelXP)))
	}

	if !c.Worlds {
		return nil
	}
	worlds, err := tr.Worlds()
	if err != nil {
		return err
	}
	ctx.println()
	for _, w := range worlds {
		marker := "  "
		switch {
		case w.Current:
			marker = "▶ "
		case !w.Unlocked:
			marker = "🔒"
		}
		ctx.printf("%s World %2d  %-18s from level %d\n", marker, w.Number, w.Name, w.RequiredLevel)
	}
	return nil
}

type AchievementsCmd struct {
	List  AchievementsListCmd  `cmd:"" default:"1" help:"List achievements and progress toward them."`
	Check AchievementsCheckCmd `cmd:"" help:"Evaluate achievements now."`
}

type AchievementsListCmd struct {
	Locked bool `help:"Only show achievements that are still locked."`
}

func (c *AchievementsListCmd) Run(ctx *Context) error {
	tr, err := ctx.Tracker()
	if err != nil {
		return err
	}
	statuses, err := tr.Achievements()
	if err != nil {
		return err
	}

	unlocked := 0
	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	for _, st := range statuses {
		if st.Unlocked {
			unlocked++
			if c.Locked {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%s\tunlocked %s\n",
				st.Definition.Icon, st.Definition.Name, st.Definition.Description, humanize.Time(*st.UnlockedAt))
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0f%% (%d/%d)\n",
			"🔒", st.Definition.Name, st.Definition.Description, st.Percent, st.Value, st.Definition.Requirement)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	ctx.printf("\n%d of %d unlocked\n", unlocked, len(statuses))
	return nil
}

type AchievementsCheckCmd struct{}

func (c *AchievementsCheckCmd) Run(ctx *Context) error {
	tr, err := ctx.Tracker()
	if err != nil {
		return err
	}
	out, err := tr.CheckAchievements()
	if err != nil {
		return err
	}
	if len(out.Unlocked) == 0 {
		ctx.println("No new achievements.")
	}
	ctx.printOutcome(out)
	return nil
}

type TemplatesCmd struct {
	List TemplatesListCmd `cmd:"" default:"1" help:"List habit templates."`
	Add  TemplatesAddCmd  `cmd:"" help:"Add a custom template (admin only)."`
}

type TemplatesListCmd struct {
	Category string `short:"c" help:"Only show one category."`
}

func (c *TemplatesListCmd) Run(ctx *Context) error {
	tr, err := ctx.Tracker()
	if err != nil {
		return err
	}
	tpls, err := tr.Templates(c.Category)
	if err != nil {
		return err
	}
	if len(tpls) == 0 {
		categories, err := templates.Categories(tr.Store())
		if err != nil {
			return err
		}
		ctx.printf("No templates in category %q. Categories: %s\n", c.Category, strings.Join(categories, ", "))
		return nil
	}

	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tXP\tCATEGORY")
	for _, t := range tpls {
		fmt.Fprintf(w, "%s\t%s %s\t%d\t%s\n", t.ID, t.Icon, t.Name, t.XPReward, t.Category)
	}
	return w.Flush()
}

type TemplatesAddCmd struct {
	Name        string `arg:"" help:"Template name."`
	Description string `short:"d" help:"Description."`
	XP          int    `name:"xp" default:"10" help:"XP reward."`
	Icon        string `default:"⭐" help:"Icon shown next to the name."`
	Category    string `short:"c" default:"custom" help:"Category."`
}

func (c *TemplatesAddCmd) Run(ctx *Context) error {
	tr, err := ctx.Tracker()
	if err != nil {
		return err
	}
	tpl, err := tr.AddTemplate(models.HabitTemplate{
		Name:        c.Name,
		Description: c.Description,
		XPReward:    c.XP,
		Icon:        c.Icon,
		Category:    c.Category,
	})
	if err != nil {
		return err
	}
	ctx.printf("✓ Added template %s\n", tpl.ID)
	return nil
}

// printOutcome announces level-ups, new worlds and unlocked achievements.
func (c *Context) printOutcome(out tracker.Outcome) {
	if out.LeveledUp {
		c.printf("⬆ Level up! You reached level %d\n", out.Progress.Level)
	}
	if out.WorldUnlocked {
		c.printf("🌍 New world unlocked: World %d, %s\n",
			out.Progress.CurrentWorld, leveling.WorldName(out.Progress.CurrentWorld))
	}
	for _, def := range out.Unlocked {
		c.printf("%s Achievement unlocked: %s", def.Icon, def.Name)
		if def.XPReward > 0 {
			c.printf(" (+%s XP)", humanize.Comma(int64(def.XPReward)))
		}
		c.println()
	}
}
