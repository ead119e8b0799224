package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/UnknownOlympus/atlas-mapquest/internal/config"
	"github.com/UnknownOlympus/atlas-mapquest/internal/geocoding"
	"github.com/UnknownOlympus/atlas-mapquest/internal/logging"
	"github.com/spf13/cobra"
)

// Output formats.
const (
	formatLocations = "locations" // every location the provider returns
	formatGeo       = "geo"       // geo-golang Location or Address, best result only
)

// providerFactory builds the provider a command talks to.
type providerFactory func(geocoding.ProviderConfig) (geocoding.Provider, error)

// cli holds the state shared by every subcommand.
type cli struct {
	newProvider providerFactory
	provider    geocoding.Provider

	providerType string
	apiKey       string
	licensed     bool
	verbose      bool
	format       string
}

func main() {
	if err := newRootCmd(geocoding.NewProvider).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(newProvider providerFactory) *cobra.Command {
	app := &cli{newProvider: newProvider}

	rootCmd := &cobra.Command{
		Use:   "geocode",
		Short: "One-shot forward and reverse geocoding lookups",
		Long: `
geocode resolves a free-form address into locations, or a coordinate pair
into the addresses around it, and prints the result as JSON. With
--format geo only the best match is printed, in geo-golang's Location or
Address shape.

Settings come from the same environment as the atlas service; flags win.
`,
		SilenceUsage:      true,
		PersistentPreRunE: app.setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.providerType, "provider", "", "provider to use: mapquest, google")
	flags.StringVar(&app.apiKey, "key", "", "provider API key")
	flags.BoolVar(&app.licensed, "licensed", false, "use the licensed MapQuest endpoint")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "log provider requests to stderr")
	flags.StringVar(&app.format, "format", formatLocations, "output format: locations, geo")

	rootCmd.AddCommand(app.forwardCmd(), app.reverseCmd())

	return rootCmd
}

func (app *cli) setup(cmd *cobra.Command, _ []string) error {
	if app.format != formatLocations && app.format != formatGeo {
		return fmt.Errorf("unknown output format %q", app.format)
	}

	cfg := config.MustLoad().Provider

	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.Type = app.providerType
	}
	if flags.Changed("key") {
		cfg.APIKey = app.apiKey
	}
	if flags.Changed("licensed") {
		cfg.Licensed = app.licensed
	}

	var logger *slog.Logger
	if app.verbose {
		logger = logging.Setup(logging.EnvLocal, cmd.ErrOrStderr())
	}

	provider, err := app.newProvider(cfg.Geocoding(logger))
	if err != nil {
		return fmt.Errorf("failed to create geocoding provider: %w", err)
	}
	app.provider = provider

	return nil
}

func (app *cli) forwardCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "forward <address>",
		Short: "Resolve an address into locations",
		Example: `  geocode forward "1600 Amphitheatre Parkway, Mountain View" --limit 3
  geocode forward "Хрещатик 1, Київ" --provider google`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := geocoding.NewGeocodeQuery(args[0])
			if err != nil {
				return err
			}
			if query, err = query.WithLimit(limit); err != nil {
				return err
			}

			if app.format == formatGeo {
				location, geoErr := geocoding.NewGeoGolang(app.provider, 0).Geocode(query.Text)
				return printBest(cmd.OutOrStdout(), location, geoErr)
			}

			locations, err := app.provider.Geocode(cmd.Context(), query)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), locations)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", geocoding.DefaultLimit, "maximum number of results")

	return cmd
}

func (app *cli) reverseCmd() *cobra.Command {
	var lat, lng float64

	cmd := &cobra.Command{
		Use:     "reverse",
		Short:   "Resolve coordinates into addresses",
		Example: `  geocode reverse --lat 37.3349 --lng -121.8881`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query, err := geocoding.NewReverseQuery(lat, lng)
			if err != nil {
				return err
			}

			if app.format == formatGeo {
				address, geoErr := geocoding.NewGeoGolang(app.provider, 0).ReverseGeocode(query.Latitude, query.Longitude)
				return printBest(cmd.OutOrStdout(), address, geoErr)
			}

			locations, err := app.provider.ReverseGeocode(cmd.Context(), query)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), locations)
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude in decimal degrees")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude in decimal degrees")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")

	return cmd
}

// printBest prints the single result of a geo-golang lookup. A nil result
// with a nil error means nothing was found.
func printBest[T any](w io.Writer, result *T, err error) error {
	if err != nil {
		return err
	}
	if result == nil {
		return geocoding.ErrZeroResults
	}

	return printJSON(w, result)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	return enc.Encode(v)
}
