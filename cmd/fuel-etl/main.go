// Command fuel-etl downloads public alternative fuel datasets and writes
// them as CSV files.
//
// Usage:
//
//	fuel-etl stations [--output alternative_fuels_data.csv]
//	fuel-etl vehicles [resource-id...] [--output vehicle_fuel_type.csv]
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sternrassler/fuel-data-etl/cmd/fuel-etl/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.ExecuteContext(ctx)
}
