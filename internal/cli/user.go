package cli

import (
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/habitquest/internal/leveling"
)

type SigninCmd struct {
	Email string `arg:"" help:"Email address identifying the user."`
	Name  string `help:"Display name."`
	Admin bool   `help:"Create the user as an admin (only applies to new users)."`
}

func (c *SigninCmd) Run(ctx *Context) error {
	tr, err := ctx.Tracker()
	if err != nil {
		return err
	}
	user, err := tr.SignIn(c.Email, c.Name, c.Admin)
	if err != nil {
		return err
	}
	ctx.printf("✓ Signed in as %s\n", displayName(user.Name, user.Email))
	return nil
}

type SignoutCmd struct{}

func (c *SignoutCmd) Run(ctx *Context) error {
	tr, err := ctx.Tracker()
	if err != nil {
		return err
	}
	if err := tr.SignOut(); err != nil {
		return err
	}
	ctx.println("✓ Signed out")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *Context) error {
	tr, err := ctx.Tracker()
	if err != nil {
		return err
	}
	user, err := tr.CurrentUser()
	if err != nil {
		return err
	}
	_, s, err := tr.Progress()
	if err != nil {
		return err
	}

	ctx.printf("%s <%s>\n", displayName(user.Name, user.Email), user.Email)
	if user.IsAdmin {
		ctx.println("Role: admin")
	}
	ctx.printf("Level %d, World %d (%s), %s XP\n",
		s.Level, s.World, leveling.WorldName(s.World), humanize.Comma(int64(s.TotalXP)))
	ctx.printf("Member since %s\n", humanize.Time(user.CreatedAt))
	return nil
}

func displayName(name, email string) string {
	if name != "" {
		return name
	}
	return email
}
