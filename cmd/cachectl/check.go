package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/cachekit/cache/damage"
	"github.com/joshuapare/cachekit/cache/dump"
)

var checkFailFast bool

func init() {
	cmd := newCheckCmd()
	cmd.Flags().BoolVar(&checkFailFast, "fail-fast", false, "Stop at the first problem")
	rootCmd.AddCommand(cmd)
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <metadata-dev>",
		Short: "Verify the mapping array and list every problem",
		Long: `The check command walks the whole mapping array without producing a
dump and reports every damaged or invalid mapping it finds. It exits non-zero
when anything is wrong.

Example:
  cachectl check /dev/vg/cmeta
  cachectl check cmeta.img --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args)
		},
	}
	return cmd
}

func runCheck(args []string) error {
	report, err := dump.Check(args[0], dump.CheckOptions{FailFast: checkFailFast})
	if err != nil {
		return err
	}

	if jsonOut {
		if err := printJSON(report); err != nil {
			return err
		}
	} else {
		printReport(report)
	}

	if !report.Clean() {
		return fmt.Errorf("%d problems found (%d missing, %d invalid)",
			len(report.Damage),
			report.Count(damage.MissingMappings),
			report.Count(damage.InvalidMapping))
	}
	return nil
}

func printReport(r *dump.Report) {
	printInfo("Checked %d mappings: %d valid, %d dirty\n", r.Mappings, r.Valid, r.Dirty)
	if r.Clean() {
		printInfo("  ✓ No damage found\n")
		return
	}
	printInfo("\nProblems:\n")
	for _, d := range r.Damage {
		printInfo("  ✗ %s\n", d)
	}
	if r.Skipped > 0 {
		printInfo("\n%d cache blocks could not be read\n", r.Skipped)
	}
}
