package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weak-head/segy-pipe/internal/converter"
	"github.com/weak-head/segy-pipe/internal/metrics"
)

// run converts the input file to the output file.
func (c *cli) run(cmd *cobra.Command, args []string) error {
	registry, err := metrics.NewRegistry()
	if err != nil {
		return err
	}

	reporter, err := metrics.NewReporter(metrics.ServiceInfo{Engine: engine})
	if err != nil {
		return err
	}

	conv, err := converter.NewConverter(
		converter.Config{
			Header:    c.header(),
			ChunkSize: c.cfg.chunkSize,
			Buffered:  c.cfg.buffered,
		},
		reporter,
		c.log,
	)
	if err != nil {
		return err
	}

	_, convErr := conv.Convert(cmd.Context(), c.cfg.input, c.cfg.output)

	if c.cfg.metricsTextfile != "" {
		if err := metrics.WriteTextfile(c.cfg.metricsTextfile, registry); err != nil {
			c.log.WithField("path", c.cfg.metricsTextfile).Error(err, "Failed to write the metrics textfile.")
		}
	}

	if convErr != nil {
		return convErr
	}

	fmt.Fprintln(cmd.OutOrStdout(), successMessage)
	return nil
}
