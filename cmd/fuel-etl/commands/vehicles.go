package commands

import (
	"github.com/Sternrassler/fuel-data-etl/pkg/etl"
	"github.com/Sternrassler/fuel-data-etl/pkg/normalize"
	"github.com/Sternrassler/fuel-data-etl/pkg/pagination"
	"github.com/Sternrassler/fuel-data-etl/pkg/sources/ckan"
	"github.com/spf13/cobra"
)

func newVehiclesCmd(opts *options) *cobra.Command {
	var (
		output   string
		pageSize int
	)

	cmd := &cobra.Command{
		Use:   "vehicles [resource-id...] [--output <file.csv>] [--page-size <n>]",
		Short: "Fetches the DMV vehicle fuel type datasets and writes them to one CSV file.",
		Long: "Fetches every record of each datastore resource in order, renames the ZIP code\n" +
			"column variants to \"Zip Code\" and writes the concatenation to one CSV file.\n" +
			"Without arguments the resource ids from the configuration are used.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if output == "" {
				output = cfg.VehiclesOutput
			}
			if pageSize == 0 {
				pageSize = cfg.PageSize
			}
			resourceIDs := cfg.ResourceIDs
			if len(args) > 0 {
				resourceIDs = args
			}

			return opts.run(cmd, func() (*etl.Summary, error) {
				c, closeClient, err := newClient(cmd.Context(), cfg)
				if err != nil {
					return nil, err
				}
				defer closeClient()

				fetcher, err := pagination.New(ckan.NewSource(c, cfg.CKANBaseURL), pagination.Config{PageSize: pageSize})
				if err != nil {
					return nil, err
				}
				canon := normalize.NewCanonicalizer(cfg.ColumnAliases)

				return etl.Vehicles(cmd.Context(), fetcher, resourceIDs, canon, output)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output CSV file (default from config: vehicle_fuel_type.csv)")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "records per request (default from config: 5000)")
	return cmd
}
