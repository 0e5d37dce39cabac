// Package main provides the FleetForge CLI entrypoint.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fleetforge/fleetforge/internal/cache"
	"github.com/fleetforge/fleetforge/internal/config"
	"github.com/fleetforge/fleetforge/internal/fleet"
	"github.com/fleetforge/fleetforge/internal/lookup"
	"github.com/fleetforge/fleetforge/internal/observability"
	"github.com/fleetforge/fleetforge/internal/specsource"
)

var (
	cfgFile    string
	outputJSON bool
	verbose    bool

	cfg    *config.Config
	logger *observability.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "fleetforge-cli",
	Short: "FleetForge CLI for vehicle specification lookups",
	Long: `FleetForge CLI resolves technical specifications for fleet vehicles.

Use this tool to:
- Look up a vehicle's specification by make/model/year or registration
- List candidate model names for a manufacturer

Source credentials are read from the environment (API_NINJAS_KEY,
DVLA_API_KEY, OPEN_VEHICLES_KEY) or a config file.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		level := "error"
		if verbose {
			level = cfg.Observability.LogLevel
		}
		logger = observability.NewLogger(observability.LogConfig{
			Level:       level,
			Format:      "console",
			ServiceName: "fleetforge-cli",
		})

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newLookupCmd())
	rootCmd.AddCommand(newModelsCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newService builds a lookup service backed by the configured sources, with
// an in-memory cache and no persistence.
func newService() *lookup.Service {
	httpClient := &http.Client{}
	timeout := cfg.Lookup.RequestTimeout

	resolver := specsource.NewResolver(logger)
	resolver.Register(specsource.NewDVLAAdapter(httpClient, logger, specsource.DVLAConfig{
		BaseURL: cfg.Sources.DVLA.BaseURL,
		APIKey:  cfg.Sources.DVLA.APIKey,
		Timeout: timeout,
	}))
	resolver.Register(specsource.NewNinjasMotorcycleAdapter(httpClient, logger, specsource.NinjasConfig{
		BaseURL: cfg.Sources.APINinjas.BaseURL,
		APIKey:  cfg.Sources.APINinjas.APIKey,
		Timeout: timeout,
	}))
	resolver.Register(specsource.NewNinjasCarAdapter(httpClient, logger, specsource.NinjasConfig{
		BaseURL: cfg.Sources.APINinjas.BaseURL,
		APIKey:  cfg.Sources.APINinjas.APIKey,
		Timeout: timeout,
	}))
	resolver.Register(specsource.NewOpenVehiclesAdapter(httpClient, logger, specsource.OpenVehiclesConfig{
		BaseURL: cfg.Sources.OpenVehicles.BaseURL,
		APIKey:  cfg.Sources.OpenVehicles.APIKey,
		Timeout: timeout,
	}))

	return lookup.NewService(logger, resolver, cache.NewMemoryClient(cfg.Cache.MaxEntries), nil, lookup.Config{
		CacheResults: cfg.Lookup.CacheResults,
		CacheTTL:     cfg.Lookup.CacheTTL,
	})
}

// newLookupCmd creates the lookup subcommand.
func newLookupCmd() *cobra.Command {
	var (
		makeName     string
		model        string
		year         int
		vehicleType  string
		registration string
	)

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Look up a vehicle's technical specification",
		Long: `Lookup queries the configured specification sources in priority order and
prints the first match. With --reg the DVLA registration source is consulted
first; otherwise the make/model sources are searched with name variations
and fuzzy matching.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if registration == "" && (makeName == "" || model == "") {
				return fmt.Errorf("either --reg or both --make and --model are required")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			svc := newService()
			v := fleet.Vehicle{
				Make:         makeName,
				Model:        model,
				Year:         year,
				Registration: registration,
				Class:        vehicleType,
			}

			var s *spinner.Spinner
			if !outputJSON {
				s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
				s.Suffix = " Searching specification sources..."
				s.Start()
			}

			spec, err := svc.Lookup(ctx, uuid.Nil, v)

			if s != nil {
				s.Stop()
			}
			if err != nil {
				return err
			}
			if spec == nil {
				if outputJSON {
					fmt.Println("null")
					return nil
				}
				color.Yellow("No specification found for %s", describeVehicle(v))
				return nil
			}

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(spec)
			}

			printSpecification(v, spec)
			return nil
		},
	}

	cmd.Flags().StringVar(&makeName, "make", "", "vehicle manufacturer")
	cmd.Flags().StringVar(&model, "model", "", "vehicle model name")
	cmd.Flags().IntVar(&year, "year", 0, "model year")
	cmd.Flags().StringVar(&vehicleType, "type", "motorcycle", "vehicle type (motorcycle, car, truck, van, ev)")
	cmd.Flags().StringVar(&registration, "reg", "", "registration number for a DVLA lookup")

	return cmd
}

// newModelsCmd creates the models subcommand.
func newModelsCmd() *cobra.Command {
	var (
		makeName    string
		query       string
		vehicleType string
	)

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List candidate model names for a manufacturer",
		RunE: func(cmd *cobra.Command, args []string) error {
			if makeName == "" {
				return fmt.Errorf("--make is required")
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			svc := newService()
			models := svc.SearchModels(ctx, vehicleType, makeName, query)

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(models)
			}

			if len(models) == 0 {
				color.Yellow("No models found for %s", makeName)
				return nil
			}

			color.New(color.FgCyan, color.Bold).Printf("Models for %s:\n", makeName)
			for _, m := range models {
				fmt.Printf("  %s\n", m)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&makeName, "make", "", "vehicle manufacturer")
	cmd.Flags().StringVar(&query, "q", "", "filter models by substring")
	cmd.Flags().StringVar(&vehicleType, "type", "motorcycle", "vehicle type")

	return cmd
}

func describeVehicle(v fleet.Vehicle) string {
	if v.Registration != "" {
		return v.Registration
	}
	if v.Year > 0 {
		return fmt.Sprintf("%s %s (%d)", v.Make, v.Model, v.Year)
	}
	return fmt.Sprintf("%s %s", v.Make, v.Model)
}

func printSpecification(v fleet.Vehicle, spec *fleet.Specification) {
	header := color.New(color.FgCyan, color.Bold)
	key := color.New(color.FgGreen)

	header.Printf("Specification for %s\n", describeVehicle(v))
	fmt.Printf("Source: %s (fetched %s)\n\n", spec.SourceURL, spec.ScrapedAt.Format(time.RFC3339))

	for _, f := range spec.Fields() {
		key.Printf("  %-20s", f.Name)
		fmt.Printf(" %s\n", f.Value)
	}

	if len(spec.AdditionalInfo) > 0 {
		fmt.Println()
		header.Println("Additional info")
		for k, val := range spec.AdditionalInfo {
			key.Printf("  %-20s", k)
			fmt.Printf(" %s\n", val)
		}
	}
}
