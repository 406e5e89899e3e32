package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/julianstephens/habitquest/internal/tracker"
)

type HabitCmd struct {
	Add          HabitAddCmd          `cmd:"" help:"Add a new habit."`
	List         HabitListCmd         `cmd:"" default:"1" help:"List habits with streaks."`
	Edit         HabitEditCmd         `cmd:"" help:"Edit a habit."`
	Delete       HabitDeleteCmd       `cmd:"" help:"Delete a habit. Earned XP is kept."`
	FromTemplate HabitFromTemplateCmd `cmd:"" name:"from-template" help:"Add a habit from a template."`
	History      HabitHistoryCmd      `cmd:"" help:"Show recent days for a habit."`
}

type HabitAddCmd struct {
	Name        string `arg:"" help:"Habit name."`
	Description string `short:"d" help:"Optional description."`
	XP          int    `name:"xp" default:"10" help:"XP awarded per completed day."`
}

func (c *HabitAddCmd) Run(ctx *Context) error {
	tr, err := ctx.Tracker()
	if err != nil {
		return err
	}
	h, err := tr.CreateHabit(c.Name, c.Description, c.XP)
	if err != nil {
		return err
	}
	ctx.printf("✓ Added habit %q (+%d XP) [%s]\n", h.Name, h.XPReward, shortID(h.ID))
	return nil
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *Context) error {
	tr, err := ctx.Tracker()
	if err != nil {
		return err
	}
	views, err := tr.ListHabits()
	if err != nil {
		return err
	}
	if len(views) == 0 {
		ctx.println("No habits yet. Add one with 'habitquest habit add <name>'.")
		return nil
	}

	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTODAY\tNAME\tXP\tSTREAK\tBEST")
	for _, v := range views {
		today := "○"
		if v.CompletedToday {
			today = "✓"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
			shortID(v.ID), today, v.Name, v.XPReward, v.CurrentStreak, v.LongestStreak)
	}
	return w.Flush()
}

type HabitEditCmd struct {
	Habit       string  `arg:"" help:"Habit id, id prefix or name."`
	Name        *string `help:"New name."`
	Description *string `short:"d" help:"New description."`
	XP          *int    `name:"xp" help:"New XP reward."`
}

func (c *HabitEditCmd) Run(ctx *Context) error {
	if c.Name == nil && c.Description == nil && c.XP == nil {
		return errors.New("nothing to change, pass --name, --description or --xp")
	}
	tr, err := ctx.Tracker()
	if err != nil {
		return err
	}
	h, err := tr.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}
	h, err = tr.UpdateHabit(h.ID, tracker.HabitPatch{
		Name:        c.Name,
		Description: c.Description,
		XPReward:    c.XP,
	})
	if err != nil {
		return err
	}
	ctx.printf("✓ Updated habit %q (+%d XP)\n", h.Name, h.XPReward)
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit id, id prefix or name."`
	Yes   bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HabitDeleteCmd) Run(ctx *Context) error {
	tr, err := ctx.Tracker()
	if err != nil {
		return err
	}
	h, err := tr.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}
	if !c.Yes && !ctx.confirm(fmt.Sprintf("Delete habit %q and its check-ins?", h.Name)) {
		ctx.println("Cancelled.")
		return nil
	}
	if err := tr.DeleteHabit(h.ID); err != nil {
		return err
	}
	ctx.printf("✓ Deleted habit %q\n", h.Name)
	return nil
}

type HabitFromTemplateCmd struct {
	Template string `arg:"" help:"Template id, for example template-water."`
}

func (c *HabitFromTemplateCmd) Run(ctx *Context) error {
	tr, err := ctx.Tracker()
	if err != nil {
		return err
	}
	id := c.Template
	if !strings.HasPrefix(id, "template-") {
		id = "template-" + id
	}
	h, err := tr.CreateHabitFromTemplate(id)
	if err != nil {
		return err
	}
	ctx.printf("✓ Added habit %q (+%d XP) [%s]\n", h.Name, h.XPReward, shortID(h.ID))
	return nil
}

type HabitHistoryCmd struct {
	Habit string `arg:"" help:"Habit id, id prefix or name."`
	Days  int    `default:"14" help:"Number of days to show."`
}

func (c *HabitHistoryCmd) Run(ctx *Context) error {
	tr, err := ctx.Tracker()
	if err != nil {
		return err
	}
	h, err := tr.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}
	days, err := tr.History(h.ID, c.Days)
	if err != nil {
		return err
	}

	ctx.printf("%s, last %d days:\n", h.Name, len(days))
	var strip strings.Builder
	done := 0
	for _, d := range days {
		if d.Completed {
			strip.WriteString("■")
			done++
		} else {
			strip.WriteString("□")
		}
	}
	ctx.printf("  %s  %d/%d\n", strip.String(), done, len(days))
	return nil
}

type CheckCmd struct {
	Habit string `arg:"" help:"Habit id, id prefix or name."`
	Date  string `help:"Day to toggle (YYYY-MM-DD). Defaults to today."`
}

func (c *CheckCmd) Run(ctx *Context) error {
	tr, err := ctx.Tracker()
	if err != nil {
		return err
	}
	h, err := tr.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}
	res, err := tr.ToggleCheckIn(h.ID, c.Date)
	if err != nil {
		return err
	}

	if res.CheckIn.Completed {
		ctx.printf("✓ %s completed for %s (%+d XP)\n", h.Name, res.CheckIn.Date, res.XPDelta)
	} else {
		ctx.printf("○ %s unchecked for %s (%+d XP)\n", h.Name, res.CheckIn.Date, res.XPDelta)
	}
	ctx.printOutcome(res.Outcome)
	return nil
}

// confirm asks a yes/no question on In. Anything but y or yes is a no.
func (c *Context) confirm(question string) bool {
	c.printf("%s [y/N]: ", question)
	response, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
