package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/bmateuszideas/DPF-CALC/internal/api"
	"github.com/bmateuszideas/DPF-CALC/internal/db"
	"github.com/bmateuszideas/DPF-CALC/internal/dpf"
	"github.com/bmateuszideas/DPF-CALC/internal/loader"
	"github.com/bmateuszideas/DPF-CALC/internal/logging"
	"github.com/bmateuszideas/DPF-CALC/internal/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dbPath   string
	database *db.Database
)

func main() {
	defer logging.Sync()

	rootCmd := &cobra.Command{
		Use:   "dpf-calc",
		Short: "DPF-CALC - Diesel particulate filter ash accumulation estimator",
		Long: `A CLI tool for estimating DPF ash/soot accumulation from two models:
a chemistry-based ash mass calculator fed by oil/fuel specification
databases, and a driving-profile relative fill model. Loaded specs and
computed estimates are stored in SQLite, with REST API access.`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "dpf_calc.db", "Path to SQLite database")

	// Add commands
	rootCmd.AddCommand(serverCmd())
	rootCmd.AddCommand(loadCmd())
	rootCmd.AddCommand(estimateCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(oilsCmd())
	rootCmd.AddCommand(fuelsCmd())
	rootCmd.AddCommand(statsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initDB initializes database connection
func initDB() error {
	var err error
	database, err = db.New(dbPath)
	return err
}

// serverCmd starts the REST API server
func serverCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initDB(); err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			defer database.Close()

			server := api.NewServer(database)
			addr := fmt.Sprintf(":%d", port)

			logging.Logger.Info("starting server",
				zap.String("addr", addr),
				zap.String("db", dbPath),
			)

			fmt.Println("Available endpoints:")
			fmt.Println("  GET  /health")
			fmt.Println("  GET  /api/v1/oils")
			fmt.Println("  GET  /api/v1/oils/{id}")
			fmt.Println("  GET  /api/v1/fuels")
			fmt.Println("  GET  /api/v1/fuels/{id}")
			fmt.Println("  POST /api/v1/estimate")
			fmt.Println("  POST /api/v1/simulate")
			fmt.Println("  GET  /api/v1/estimates")
			fmt.Println("  GET  /api/v1/stats")
			fmt.Println()

			return http.ListenAndServe(addr, server.Router())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Server port")
	return cmd
}

// loadCmd loads oil/fuel specification CSVs into the database
func loadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load specification databases from CSV files",
	}

	oilsCmd := &cobra.Command{
		Use:   "oils [file]",
		Short: "Load an oils CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initDB(); err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			defer database.Close()

			oils, err := loader.LoadOilsFile(args[0])
			if err != nil {
				return err
			}

			count, err := database.UpsertOils(oils)
			if err != nil {
				return err
			}

			fmt.Printf("Loaded %d oil specs from %s\n", count, args[0])
			return nil
		},
	}

	fuelsCmd := &cobra.Command{
		Use:   "fuels [file]",
		Short: "Load a fuels CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initDB(); err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			defer database.Close()

			fuels, err := loader.LoadFuelsFile(args[0])
			if err != nil {
				return err
			}

			count, err := database.UpsertFuels(fuels)
			if err != nil {
				return err
			}

			fmt.Printf("Loaded %d fuel specs from %s\n", count, args[0])
			return nil
		},
	}

	cmd.AddCommand(oilsCmd, fuelsCmd)
	return cmd
}

// estimateCmd runs the chemical ash calculator
func estimateCmd() *cobra.Command {
	var (
		oilID           string
		fuelID          string
		vehicleID       string
		mileageKM       float64
		oilConsumption  float64
		fuelConsumption float64
		capacityG       float64
		sulfurFactor    float64
		save            bool
		outputFormat    string
	)

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate DPF ash fill from oil/fuel chemistry",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initDB(); err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			defer database.Close()

			oil, err := database.GetOil(oilID)
			if err != nil {
				return err
			}
			fuel, err := database.GetFuel(fuelID)
			if err != nil {
				return err
			}

			profile := models.UsageProfile{
				MileageKM:              mileageKM,
				OilConsumptionLPer1000: oilConsumption,
				FuelConsumptionLPer100: fuelConsumption,
			}
			cfg := dpf.AshFillConfig{
				DPFCapacityAshG:   capacityG,
				SulfurToAshFactor: sulfurFactor,
			}

			result, err := dpf.AshFill(profile, *oil, *fuel, cfg)
			if err != nil {
				return err
			}

			if save {
				record := models.EstimateRecord{
					VehicleID: vehicleID,
					OilID:     oilID,
					FuelID:    fuelID,
					Profile:   profile,
					Result:    result,
				}
				if err := database.SaveEstimate(&record); err != nil {
					return err
				}
				fmt.Printf("Saved estimate #%d\n\n", record.ID)
			}

			switch outputFormat {
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				enc.Encode(result)
			default:
				fmt.Printf("DPF Ash Fill Estimate (%s + %s, %.0f km)\n", oil.Name, fuel.Name, mileageKM)
				fmt.Println("==========================================")
				fmt.Printf("  Oil ash:       %8.1f g\n", result.OilAshG)
				fmt.Printf("  Fuel ash:      %8.1f g\n", result.FuelAshG)
				fmt.Printf("  Total ash:     %8.1f g\n", result.TotalAshG)
				fmt.Printf("  Capacity:      %8.1f g\n", result.DPFCapacityAshG)
				fmt.Printf("  Fill:          %8.1f %%\n", result.FillPercent)
				if result.FillRatio >= 1.0 {
					fmt.Println("  ⚠️  Estimated ash exceeds filter capacity — cleaning overdue")
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&oilID, "oil", "", "Oil spec ID (required)")
	cmd.Flags().StringVar(&fuelID, "fuel", "", "Fuel spec ID (required)")
	cmd.Flags().StringVar(&vehicleID, "vehicle", "", "Vehicle ID to tag the estimate with")
	cmd.Flags().Float64Var(&mileageKM, "mileage", 0, "Mileage since last DPF service [km]")
	cmd.Flags().Float64Var(&oilConsumption, "oil-consumption", 0.3, "Oil consumption [l/1000km]")
	cmd.Flags().Float64Var(&fuelConsumption, "fuel-consumption", 7.0, "Fuel consumption [l/100km]")
	cmd.Flags().Float64Var(&capacityG, "capacity", 1100.0, "Assumed DPF ash capacity [g]")
	cmd.Flags().Float64Var(&sulfurFactor, "sulfur-factor", 3.0, "Sulfur-to-ash conversion factor")
	cmd.Flags().BoolVar(&save, "save", false, "Save the estimate to the database")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json)")
	cmd.MarkFlagRequired("oil")
	cmd.MarkFlagRequired("fuel")
	return cmd
}

// simulateCmd runs the driving-profile lifecycle simulation
func simulateCmd() *cobra.Command {
	var (
		avgSpeed     float64
		cityRatio    float64
		ashContent   float64
		sulfurPPM    float64
		startKM      float64
		endKM        float64
		stepKM       float64
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate the DPF fill curve over a mileage range",
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs := models.DPFInputs{
				AvgSpeedKMH:      avgSpeed,
				CityRatio:        cityRatio,
				OilAshContentPct: ashContent,
				FuelSulfurPPM:    sulfurPPM,
			}

			states, err := dpf.SimulateLifecycle(inputs, dpf.DefaultParams(), startKM, endKM, stepKM)
			if err != nil {
				return err
			}

			switch outputFormat {
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				enc.Encode(states)
			case "csv":
				fmt.Println("mileage_km,fill_level")
				for _, st := range states {
					fmt.Printf("%.0f,%.4f\n", st.MileageKM, st.FillLevel)
				}
			default:
				fmt.Printf("%-12s %-10s\n", "Mileage", "Fill")
				for _, st := range states {
					fmt.Printf("%-12.0f %-10.1f%%\n", st.MileageKM, st.FillLevel*100)
				}
			}

			return nil
		},
	}

	cmd.Flags().Float64Var(&avgSpeed, "speed", 45, "Average speed [km/h]")
	cmd.Flags().Float64Var(&cityRatio, "city-ratio", 0.5, "City driving ratio [0-1]")
	cmd.Flags().Float64Var(&ashContent, "ash", 0.8, "Oil sulfated ash content [%]")
	cmd.Flags().Float64Var(&sulfurPPM, "sulfur", 10, "Fuel sulfur content [ppm]")
	cmd.Flags().Float64Var(&startKM, "start", 0, "Start mileage [km]")
	cmd.Flags().Float64Var(&endKM, "end", 300000, "End mileage [km]")
	cmd.Flags().Float64Var(&stepKM, "step", 5000, "Mileage step [km]")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json, csv)")
	return cmd
}

// oilsCmd lists stored oil specs
func oilsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "oils",
		Short: "List stored oil specifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initDB(); err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			defer database.Close()

			oils, err := database.ListOils()
			if err != nil {
				return err
			}

			if len(oils) == 0 {
				fmt.Println("No oils found. Use 'dpf-calc load oils' to load a CSV database.")
				return nil
			}

			fmt.Printf("%-14s %-30s %-10s %-10s\n", "ID", "Name", "Ash [%]", "Dens [kg/l]")
			for _, o := range oils {
				fmt.Printf("%-14s %-30s %-10.2f %-10.3f\n", o.ID, o.Name, o.SulfatedAshPct, o.DensityKgPerL)
			}

			return nil
		},
	}
}

// fuelsCmd lists stored fuel specs
func fuelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fuels",
		Short: "List stored fuel specifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initDB(); err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			defer database.Close()

			fuels, err := database.ListFuels()
			if err != nil {
				return err
			}

			if len(fuels) == 0 {
				fmt.Println("No fuels found. Use 'dpf-calc load fuels' to load a CSV database.")
				return nil
			}

			fmt.Printf("%-14s %-30s %-12s %-10s\n", "ID", "Name", "S [ppm]", "Dens [kg/l]")
			for _, f := range fuels {
				fmt.Printf("%-14s %-30s %-12.1f %-10.3f\n", f.ID, f.Name, f.SulfurPPM, f.DensityKgPerL)
			}

			return nil
		},
	}
}

// statsCmd shows database statistics
func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initDB(); err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			defer database.Close()

			stats, err := database.GetStats()
			if err != nil {
				return fmt.Errorf("error getting stats: %w", err)
			}

			fmt.Println("📊 DPF-CALC Statistics")
			fmt.Println("======================")
			fmt.Printf("  Oil Specs:            %v\n", stats["total_oils"])
			fmt.Printf("  Fuel Specs:           %v\n", stats["total_fuels"])
			fmt.Printf("  Saved Estimates:      %v\n", stats["total_estimates"])
			fmt.Printf("  Saturated Estimates:  %v\n", stats["saturated_estimates"])
			fmt.Printf("  Database:             %s\n", dbPath)

			return nil
		},
	}
}
