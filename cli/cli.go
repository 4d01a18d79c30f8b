package cli

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"weatherwizard/manager"
)

// Weather is what the commands need from the forecast manager.
type Weather interface {
	Resolve(ctx context.Context, name, country string, d manager.Disambiguator) (*manager.City, error)
	Forecasts(ctx context.Context, city *manager.City, day manager.Day, provider manager.Provider) ([]manager.Forecast, error)
}

func New(weather Weather, ledger manager.Ledger, logger zerolog.Logger) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:          "weatherwizard [city[,country]] [day] [provider]",
		Args:         cobra.MaximumNArgs(3),
		Short:        "Returns the weather forecast for a specified city on a specified day",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withRequestLogger(cmd.Context(), logger)
			log := zerolog.Ctx(ctx)

			req, err := parseInput(args)
			if err != nil {
				var inputErr *inputError
				if errors.As(err, &inputErr) {
					printError(cmd, inputErr.Error(), "Valid options are: "+inputErr.Options()+".")
					return nil
				}
				return err
			}

			p := newPrompt(cmd.InOrStdin(), cmd.OutOrStdout())

			city, err := weather.Resolve(ctx, req.name, req.country, p)
			switch {
			case errors.Is(err, manager.ErrUnresolved), errors.Is(err, manager.ErrInvalidSelection):
				other := ""
				if p.listed {
					other = "other "
				}
				printError(cmd, "Sorry, there is no data for any "+other+"cities named '"+title(req.name)+"'.")
				return nil
			case err != nil:
				return err
			}

			log.Info().
				Str("city", city.Name).
				Str("country", req.country).
				Str("day", req.day.String()).
				Str("provider", req.provider.String()).
				Msg("fetching data")
			cmd.Printf("# Fetching %s's weather for %s\n", req.day, city.Name)

			forecasts, err := weather.Forecasts(ctx, city, req.day, req.provider)
			if err != nil {
				return err
			}

			printForecasts(cmd, city, forecasts)
			return nil
		},
	}

	cmd.AddCommand(newQuotaCommand(ledger, logger))

	return cmd, nil
}

func newQuotaCommand(ledger manager.Ledger, logger zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "quota",
		Args:  cobra.NoArgs,
		Short: "Shows today's API calls per provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withRequestLogger(cmd.Context(), logger)

			cmd.Printf("PROVIDER\t\tCALLS\tLIMIT\n")
			for _, p := range append([]manager.Provider{manager.OpenCage}, manager.WeatherProviders...) {
				entry, err := ledger.Usage(ctx, p)
				if err != nil {
					return err
				}
				cmd.Printf("%-20s\t%d\t%d\n", p, entry.Calls, entry.Limit)
			}
			return nil
		},
	}
}

func withRequestLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return logger.With().Str("request_id", uuid.NewString()).Logger().WithContext(ctx)
}

func printForecasts(cmd *cobra.Command, city *manager.City, forecasts []manager.Forecast) {
	if len(forecasts) == 0 {
		printError(cmd, "Sorry, no weather forecast could be found for "+city.Name+".")
		return
	}

	cmd.Println("-----")
	for _, f := range forecasts {
		cmd.Printf("  %s describes the weather for %s on %s\n", f.Provider, f.CityName, f.Date.Format(time.DateOnly))
		cmd.Printf("  as \"%s\" with an average temperature of %s °C.\n", f.Weather, strconv.FormatFloat(manager.Round(f.Average(), 2), 'f', -1, 64))
		cmd.Println("-----")
	}
}

func printError(cmd *cobra.Command, message string, extra ...string) {
	cmd.Println("-----")
	cmd.Println(message)
	for _, line := range extra {
		cmd.Println(line)
	}
	cmd.Println("Please check your spelling and try again.")
	cmd.Println("Use quotation marks if any of your arguments contains more than one word.")
	cmd.Println("-----")
}

func title(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
