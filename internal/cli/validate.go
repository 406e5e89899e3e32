package cli

import (
	"fmt"

	"github.com/julianstephens/habitquest/internal/progress"
	"github.com/julianstephens/habitquest/internal/validation"
)

type ValidateCmd struct {
	Fix bool `help:"Repair the conflicts that can be repaired automatically."`
}

func (cmd *ValidateCmd) Run(ctx *Context) error {
	tr, err := ctx.Tracker()
	if err != nil {
		return err
	}
	store := tr.Store()

	data, err := validation.Collect(store)
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}

	validator := validation.New()
	result := validator.Validate(data)

	ctx.println(result.FormatReport())
	if !result.HasConflicts() || !cmd.Fix {
		return nil
	}

	ctx.backupBeforeChange("validate --fix")
	actions, err := validator.Fix(store, progress.NewUpdater(store, ctx.Clock), result)
	if err != nil {
		return fmt.Errorf("fix failed: %w", err)
	}

	if len(actions) == 0 {
		ctx.println("\nNothing could be fixed automatically.")
		return nil
	}
	ctx.printf("\nApplied %d fix(es):\n", len(actions))
	for _, a := range actions {
		ctx.printf("  - %s\n", a.Action)
	}
	return nil
}
