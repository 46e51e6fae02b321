package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/cachekit/cache/dump"
	"github.com/joshuapare/cachekit/cache/metadata"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <metadata-dev>",
		Short: "Validate the superblock and report cache geometry",
		Long: `The info command validates the superblock of a cache metadata device
and displays its uuid, policy, block size, cache size, flags and statistics.

Example:
  cachectl info /dev/vg/cmeta
  cachectl info cmeta.img --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args)
		},
	}
	return cmd
}

func runInfo(args []string) error {
	printVerbose("Opening metadata: %s\n", args[0])

	sb, err := dump.Info(args[0])
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(sb)
	}
	if quiet {
		return nil
	}
	printSuperblock(message.NewPrinter(language.English), sb)
	return nil
}

func printSuperblock(p *message.Printer, sb metadata.Superblock) {
	out := os.Stdout
	p.Fprintf(out, "\nCache Metadata:\n")
	p.Fprintf(out, "  UUID:            %s\n", orNone(sb.UUID))
	p.Fprintf(out, "  Version:         %d\n", sb.Version)
	p.Fprintf(out, "  Policy:          %s %d.%d.%d\n", sb.PolicyName,
		sb.PolicyVersion[0], sb.PolicyVersion[1], sb.PolicyVersion[2])
	p.Fprintf(out, "  Hint size:       %d bytes\n", sb.PolicyHintSize)
	p.Fprintf(out, "  Block size:      %d sectors\n", sb.DataBlockSize)
	p.Fprintf(out, "  Cache blocks:    %d\n", sb.CacheBlocks)
	p.Fprintf(out, "  Discard blocks:  %d\n", sb.DiscardNrBlocks)

	p.Fprintf(out, "\nState:\n")
	p.Fprintf(out, "  Clean shutdown:  %s\n", yesNo(sb.CleanShutdown()))
	p.Fprintf(out, "  Needs check:     %s\n", yesNo(sb.NeedsCheck()))

	p.Fprintf(out, "\nStatistics:\n")
	p.Fprintf(out, "  Read hits:       %d\n", sb.Stats.ReadHits)
	p.Fprintf(out, "  Read misses:     %d\n", sb.Stats.ReadMisses)
	p.Fprintf(out, "  Write hits:      %d\n", sb.Stats.WriteHits)
	p.Fprintf(out, "  Write misses:    %d\n", sb.Stats.WriteMisses)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
