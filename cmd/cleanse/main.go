package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/housing-cleanse/internal/clean"
	"github.com/housing-cleanse/internal/config"
	"github.com/housing-cleanse/internal/dataset"
	"github.com/housing-cleanse/internal/db"
	"github.com/housing-cleanse/internal/etl"
	"github.com/housing-cleanse/internal/report"
)

var (
	// Global database connection
	dbConn *db.Connection
)

func main() {
	if err := config.LoadEnv(); err != nil {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	var err error
	dbConn, err = db.NewConnection()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbConn.Close()

	rootCmd := &cobra.Command{
		Use:   "cleanse",
		Short: "Housing sale record cleaning pipeline",
		Long:  `Imports a raw housing sales extract and applies the ordered, idempotent cleaning stages to it`,
	}

	rootCmd.AddCommand(createPingCmd())
	rootCmd.AddCommand(createImportCmd())
	rootCmd.AddCommand(createCleanCmd())
	rootCmd.AddCommand(createReportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// createPingCmd creates a command to test database connectivity
func createPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test database connectivity",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Database connection successful!")

			ds := dataset.NewSQLTable(dbConn.DB, db.SaleTable)
			count, err := ds.Count()
			if err != nil {
				log.Printf("Error counting sale records: %v", err)
				return
			}
			fmt.Printf("Sale records loaded: %d\n", count)
		},
	}
}

// createImportCmd creates the import subcommand
func createImportCmd() *cobra.Command {
	var localDebug bool

	cmd := &cobra.Command{
		Use:   "import [filename]",
		Short: "Import the raw sales extract CSV",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := dbConn.EnsureSchema(); err != nil {
				log.Fatalf("Failed to ensure schema: %v", err)
			}

			ds := dataset.NewSQLTable(dbConn.DB, db.SaleTable)
			importer := etl.NewImporter(ds)

			imported, err := importer.ImportSales(localDebug, args[0])
			if err != nil {
				log.Fatalf("Failed to import sales extract: %v", err)
			}
			fmt.Printf("Imported %d sale records\n", imported)
		},
	}

	cmd.Flags().BoolVar(&localDebug, "debug", false, "Enable debug output")
	return cmd
}

// createCleanCmd creates the clean subcommand
func createCleanCmd() *cobra.Command {
	var stageList string
	var pruneList string
	var localDebug bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Run the cleaning pipeline",
		Long:  `Run all cleaning stages in canonical order, or a comma-separated subset via --stages`,
		Run: func(cmd *cobra.Command, args []string) {
			ds := dataset.NewSQLTable(dbConn.DB, db.SaleTable)

			pruneColumns := splitList(pruneList)
			stages, err := resolveStages(stageList, pruneColumns)
			if err != nil {
				log.Fatalf("Invalid stage list: %v", err)
			}

			if err := clean.Run(localDebug, ds, stages...); err != nil {
				var missing *clean.MissingColumnError
				var failed *clean.StageError
				switch {
				case errors.As(err, &missing):
					log.Fatalf("Precondition violation: %v", missing)
				case errors.As(err, &failed):
					log.Fatalf("Stage %s failed, its changes were rolled back: %v", failed.Stage, failed.Err)
				default:
					log.Fatalf("Pipeline failed: %v", err)
				}
			}

			fmt.Println("Cleaning pipeline complete")
			printSummary(ds)
		},
	}

	cmd.Flags().StringVar(&stageList, "stages", "", "Comma-separated stage names (default: canonical order)")
	cmd.Flags().StringVar(&pruneList, "prune",
		"owner_address,property_address,sale_date,tax_district",
		"Columns dropped by the prune-columns stage")
	cmd.Flags().BoolVar(&localDebug, "debug", false, "Enable debug output")

	return cmd
}

// createReportCmd creates the report subcommand
func createReportCmd() *cobra.Command {
	var showFailures bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show read-only dataset diagnostics",
		Long:  `Report row counts, remaining null derived fields, and rows that still fail date parsing. Never mutates the dataset`,
		Run: func(cmd *cobra.Command, args []string) {
			ds := dataset.NewSQLTable(dbConn.DB, db.SaleTable)
			printSummary(ds)

			if showFailures {
				reporter := report.NewReporter(ds)
				bad, err := reporter.UnparseableDates()
				if err != nil {
					log.Fatalf("Failed to list unparseable dates: %v", err)
				}

				fmt.Println("\n=== Unparseable Sale Dates ===")
				for _, rec := range bad {
					fmt.Printf("record %d: %q\n", rec.ID(), rec.Str(clean.ColSaleDate))
				}
			}
		},
	}

	cmd.Flags().BoolVar(&showFailures, "failures", false, "List records still failing date parsing")
	return cmd
}

func printSummary(ds dataset.Dataset) {
	reporter := report.NewReporter(ds)
	stats, err := reporter.Summary()
	if err != nil {
		log.Fatalf("Failed to collect summary: %v", err)
	}

	fmt.Printf("\n=== Dataset Summary ===\n")
	fmt.Printf("Rows: %d\n", stats.Rows)
	fmt.Printf("Unparseable sale dates: %d\n", stats.UnparseableDates)
	fmt.Println("Column                  | Missing")
	fmt.Println("------------------------|--------")
	for _, col := range []string{
		clean.ColSaleDateNormalized,
		clean.ColPropertyAddress,
		clean.ColPropertyAddressLine,
		clean.ColPropertyCity,
		clean.ColOwnerAddressLine,
		clean.ColOwnerCity,
		clean.ColOwnerState,
	} {
		if missing, ok := stats.MissingByColumn[col]; ok {
			fmt.Printf("%-23s | %6d\n", col, missing)
		}
	}
}

// resolveStages turns the --stages flag into a stage list. An empty flag
// means the canonical order.
func resolveStages(stageList string, pruneColumns []string) ([]clean.Stage, error) {
	if stageList == "" {
		return clean.DefaultStages(pruneColumns...), nil
	}

	var stages []clean.Stage
	for _, name := range splitList(stageList) {
		if name == "prune-columns" {
			stages = append(stages, clean.NewPrune(pruneColumns...))
			continue
		}
		stage, err := clean.StageByName(name)
		if err != nil {
			return nil, err
		}
		stages = append(stages, stage)
	}
	return stages, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
