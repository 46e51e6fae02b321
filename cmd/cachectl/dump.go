package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/cachekit/cache/dump"
	"github.com/joshuapare/cachekit/cache/emitter"
)

var (
	dumpRepair bool
	dumpOutput string
	dumpFormat string
)

func init() {
	cmd := newDumpCmd()
	cmd.Flags().BoolVar(&dumpRepair, "repair", false, "Skip damaged mappings instead of failing")
	cmd.Flags().StringVarP(&dumpOutput, "output", "o", dump.StdoutPath, "Write the dump to a file")
	cmd.Flags().StringVar(&dumpFormat, "format", string(emitter.FormatXML), "Output format: xml, json or text")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <metadata-dev>",
		Short: "Dump cache mappings",
		Long: `The dump command writes the superblock and every valid mapping of a
cache metadata device. Any damage aborts the dump unless --repair is given,
in which case damaged mappings are skipped and logged.

Example:
  cachectl dump /dev/vg/cmeta
  cachectl dump /dev/vg/cmeta -o cmeta.xml
  cachectl dump cmeta.img --repair --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args)
		},
	}
	return cmd
}

func runDump(args []string) error {
	format, err := emitter.ParseFormat(dumpFormat)
	if err != nil {
		return err
	}

	opts := dump.DefaultOptions()
	opts.Repair = dumpRepair
	opts.Output = dumpOutput
	opts.Format = format

	printVerbose("Dumping %s to %s\n", args[0], dumpOutput)

	res, err := dump.Dump(args[0], opts)
	if err != nil {
		return err
	}
	printVerbose("%s\n", res)
	return nil
}
