package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/weak-head/segy-pipe/internal/segy"
)

func (c *cli) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [dir]",
		Short: "List the SEG-Y files of a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.inspect,
	}
}

func (c *cli) inspect(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	files, err := segy.List(dir, c.header())
	if err != nil {
		c.log.WithField("dir", dir).Error(err, "Failed to list the SEG-Y files.")
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Directory: %s\n", dir)
	if len(files) == 0 {
		fmt.Fprintln(out, "No SEG-Y files found.")
		return nil
	}

	for _, f := range files {
		fmt.Fprintf(out, "├── %s (%s)\n", f.Name, humanize.Bytes(uint64(f.Size)))
		fmt.Fprintf(out, "│   ├── Payload: %s\n", humanize.Bytes(uint64(f.PayloadSize)))
		fmt.Fprintf(out, "│   └── Header: %s\n", headerState(f))
	}
	return nil
}

func headerState(f *segy.FileInfo) string {
	switch {
	case f.Truncated:
		return "truncated"
	case f.PlaceholderHeader:
		return "placeholder"
	default:
		return "custom"
	}
}
