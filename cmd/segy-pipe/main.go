package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/weak-head/segy-pipe/internal/converter"
	"github.com/weak-head/segy-pipe/internal/logger"
	"github.com/weak-head/segy-pipe/internal/segy"
)

const (
	engine = "segy-pipe"

	successMessage = "Conversion completed successfully."
)

// Exit statuses. Every conversion failure kind has its own status.
const (
	exitOK               = 0
	exitFailure          = 1
	exitSourceOpen       = 2
	exitDestinationOpen  = 3
	exitSourceRead       = 4
	exitDestinationWrite = 5
)

type cli struct {
	cfg cfg
	log logger.Log

	stderr io.Writer
}

type cfg struct {
	logLevel  string
	logFormat string

	headerSize int
	headerFill uint8

	input           string
	output          string
	chunkSize       int
	buffered        bool
	metricsTextfile string

	pipe pipeCfg
}

func (c *cli) initConfig(cmd *cobra.Command, args []string) error {
	log, err := logger.New(logger.Config{
		Level:  c.cfg.logLevel,
		Format: c.cfg.logFormat,
		Output: c.stderr,
	})
	if err != nil {
		return err
	}
	c.log = log

	return c.header().Validate()
}

func (c *cli) header() segy.Header {
	return segy.Header{
		Size: c.cfg.headerSize,
		Fill: c.cfg.headerFill,
	}
}

func (c *cli) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "segy-pipe",
		Short: "Prepend a SEG-Y sized header to raw seismic data",
		Long: "Copies a raw binary data file into a new file prefixed with a\n" +
			"zero-filled 3200 byte header, approximating a SEG-Y file.",
		Args:              cobra.NoArgs,
		PersistentPreRunE: c.initConfig,
		RunE:              c.run,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&c.cfg.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	pf.StringVar(&c.cfg.logFormat, "log-format", logger.FormatText, "log format (text, json)")
	pf.IntVar(&c.cfg.headerSize, "header-size", segy.TextualHeaderSize, "size of the header block in bytes")
	pf.Uint8Var(&c.cfg.headerFill, "header-fill", 0x00, "value of every header byte")

	f := cmd.Flags()
	f.StringVarP(&c.cfg.input, "input", "i", converter.DefaultSourcePath, "raw source file")
	f.StringVarP(&c.cfg.output, "output", "o", converter.DefaultDestinationPath, "SEG-Y destination file, overwritten if present")
	f.IntVar(&c.cfg.chunkSize, "chunk-size", converter.DefaultChunkSize, "streaming copy buffer size in bytes")
	f.BoolVar(&c.cfg.buffered, "buffered", false, "read the whole source into memory before writing")
	f.StringVar(&c.cfg.metricsTextfile, "metrics-textfile", "", "write conversion metrics to this file in the prometheus text format")

	cmd.AddCommand(c.inspectCommand(), c.pipeCommand())
	return cmd
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command line and returns the process exit status.
func execute(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// cobra falls back to os.Args on nil args.
	if args == nil {
		args = []string{}
	}

	c := &cli{stderr: stderr}
	cmd := c.command()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	return exitOK
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, converter.ErrSourceOpen):
		return exitSourceOpen
	case errors.Is(err, converter.ErrDestinationOpen):
		return exitDestinationOpen
	case errors.Is(err, converter.ErrSourceRead):
		return exitSourceRead
	case errors.Is(err, converter.ErrDestinationWrite):
		return exitDestinationWrite
	default:
		return exitFailure
	}
}
