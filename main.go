package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"weatherwizard/apis"
	"weatherwizard/apis/accuweather"
	"weatherwizard/apis/geocoding"
	"weatherwizard/apis/openweathermap"
	"weatherwizard/apis/weatherapi"
	"weatherwizard/apis/weatherbit"
	"weatherwizard/cli"
	"weatherwizard/config"
	"weatherwizard/manager"
	"weatherwizard/quota"
	"weatherwizard/store"
)

func main() {
	ctx := context.Background()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()

	configPath := configFlag(os.Args[1:])

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || cfg.Log.Level == "" {
		level = zerolog.InfoLevel
	}
	log = log.Level(level)

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("load time zone")
	}
	now := func() time.Time { return time.Now().In(loc) }

	db, err := store.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}
	forecastStore := store.New(db, loc)

	var ledger manager.Ledger
	switch cfg.Quota.Backend {
	case "redis":
		opts, err := redis.ParseURL(cfg.Quota.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid redis url")
		}
		client := redis.NewClient(opts)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("redis ping")
		}
		ledger = quota.NewRedisLedger(client, cfg.Limits(), now)
	default:
		ledger = quota.NewDBLedger(db, cfg.Limits(), now)
	}

	deps := apis.Deps{
		Client: apis.NewClient(cfg.HTTP.Timeout),
		Ledger: ledger,
		Keys:   forecastStore,
	}

	weatherManager := manager.New(forecastStore)
	weatherManager.SetClock(now)
	weatherManager.SetGeocoding(geocoding.New(cfg.APIKey(manager.OpenCage), deps))
	weatherManager.RegisterAPI(
		accuweather.New(cfg.APIKey(manager.AccuWeather), deps),
		weatherapi.New(cfg.APIKey(manager.WeatherAPI), deps),
		weatherbit.New(cfg.APIKey(manager.Weatherbit), deps),
		openweathermap.New(cfg.APIKey(manager.OpenWeatherMap), deps),
	)

	cmd, err := cli.New(weatherManager, ledger, log)
	if err != nil {
		log.Fatal().Err(err).Msg("new cli")
	}
	addConfigFlag(cmd)

	if err = cmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("exec")
		os.Exit(1)
	}
}

// configFlag finds --config before cobra parses the command line, since the
// configuration is needed to build the command.
func configFlag(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if path, ok := strings.CutPrefix(arg, "--config="); ok {
			return path
		}
	}
	return ""
}

func addConfigFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "path to a YAML config file replacing the built-in defaults")
}
