package commands

import (
	"github.com/Sternrassler/fuel-data-etl/pkg/etl"
	"github.com/Sternrassler/fuel-data-etl/pkg/sources/afdc"
	"github.com/spf13/cobra"
)

func newStationsCmd(opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "stations [--output <file.csv>]",
		Short: "Fetches all NREL alternative fuel stations and writes them to a CSV file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			if output == "" {
				output = cfg.StationsOutput
			}

			return opts.run(cmd, func() (*etl.Summary, error) {
				apiKey, err := cfg.RequireAPIKey()
				if err != nil {
					return nil, err
				}

				c, closeClient, err := newClient(cmd.Context(), cfg)
				if err != nil {
					return nil, err
				}
				defer closeClient()

				src, err := afdc.NewSource(c, cfg.StationsURL, apiKey, cfg.StationParams)
				if err != nil {
					return nil, err
				}
				return etl.Stations(cmd.Context(), src, output)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output CSV file (default from config: alternative_fuels_data.csv)")
	return cmd
}
