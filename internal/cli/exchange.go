package cli

import (
	"fmt"
	"os"

	"github.com/julianstephens/habitquest/internal/exchange"
)

type ExportCmd struct {
	Output string `short:"o" type:"path" help:"Write the JSON export to this file instead of stdout."`
	XLSX   string `name:"xlsx" type:"path" help:"Also write a spreadsheet report to this file."`
}

func (c *ExportCmd) Run(ctx *Context) error {
	tr, err := ctx.Tracker()
	if err != nil {
		return err
	}
	snap, err := tr.Export()
	if err != nil {
		return err
	}

	if c.XLSX != "" {
		if err := exchange.WriteWorkbook(c.XLSX, snap); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Spreadsheet written to %s\n", c.XLSX)
	}

	if c.Output == "" {
		return exchange.Write(ctx.Out, snap)
	}
	f, err := os.Create(c.Output)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := exchange.Write(f, snap); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	ctx.printf("✓ Exported %d habits and %d check-ins to %s\n", len(snap.Habits), len(snap.CheckIns), c.Output)
	return nil
}

type ImportCmd struct {
	File  string `arg:"" type:"existingfile" help:"JSON export to import."`
	Merge bool   `help:"Keep existing data and add the imported records to it."`
}

func (c *ImportCmd) Run(ctx *Context) error {
	f, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	snap, err := exchange.Parse(f)
	f.Close()
	if err != nil {
		return err
	}

	tr, err := ctx.Tracker()
	if err != nil {
		return err
	}
	if _, err := tr.CurrentUser(); err != nil {
		return err
	}

	ctx.backupBeforeChange("import")

	stats, out, err := tr.Import(snap, c.Merge)
	if err != nil {
		return err
	}

	mode := "Replaced"
	if c.Merge {
		mode = "Merged"
	}
	ctx.printf("✓ %s data from %s (exported %s)\n", mode, c.File, snap.ExportDate.Format("2006-01-02 15:04"))
	ctx.printf("  Habits: %d", stats.Habits)
	if stats.RenamedHabits > 0 {
		ctx.printf(" (%d given new ids)", stats.RenamedHabits)
	}
	ctx.println()
	ctx.printf("  Check-ins: %d", stats.CheckIns)
	if stats.SkippedCheckIns > 0 {
		ctx.printf(" (%d skipped)", stats.SkippedCheckIns)
	}
	ctx.println()
	ctx.printf("  Achievements: %d\n", stats.Achievements)
	if stats.ProgressImported {
		ctx.println("  Progress: imported")
	}
	ctx.printOutcome(out)
	return nil
}
