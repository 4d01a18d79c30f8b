package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"weatherwizard/manager"
)

// Store keeps cities and forecasts in a relational database.
type Store struct {
	db  *gorm.DB
	loc *time.Location
}

// New wraps db. Stored dates are read back as midnight in loc.
func New(db *gorm.DB, loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{db: db, loc: loc}
}

func (s *Store) FindForecast(ctx context.Context, cityID uint, date time.Time, provider manager.Provider) (*manager.Forecast, error) {
	zerolog.Ctx(ctx).Debug().
		Uint("city_id", cityID).
		Str("date", formatDate(date)).
		Str("provider", provider.String()).
		Msg("querying one forecast")

	var row Forecast
	err := s.db.WithContext(ctx).
		Where("city_id = ? AND date = ? AND provider = ?", cityID, formatDate(date), provider.String()).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, manager.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	forecast := s.toForecast(row)
	return &forecast, nil
}

func (s *Store) FindForecasts(ctx context.Context, cityID uint, date time.Time, provider manager.Provider) ([]manager.Forecast, error) {
	zerolog.Ctx(ctx).Debug().
		Uint("city_id", cityID).
		Str("date", formatDate(date)).
		Str("provider", provider.String()).
		Msg("querying all forecasts")

	query := s.db.WithContext(ctx).Where("city_id = ? AND date = ?", cityID, formatDate(date))
	if provider != 0 {
		query = query.Where("provider = ?", provider.String())
	}

	var rows []Forecast
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	forecasts := make([]manager.Forecast, 0, len(rows))
	for _, row := range rows {
		forecasts = append(forecasts, s.toForecast(row))
	}
	sort.SliceStable(forecasts, func(i, j int) bool {
		return forecasts[i].Provider < forecasts[j].Provider
	})

	return forecasts, nil
}

// SaveForecast inserts forecast unless one already exists for its city, date
// and provider. Losing an insert race is not an error.
func (s *Store) SaveForecast(ctx context.Context, forecast *manager.Forecast) error {
	log := zerolog.Ctx(ctx)

	found, err := s.FindForecast(ctx, forecast.CityID, forecast.Date, forecast.Provider)
	if err == nil {
		log.Debug().Msg("forecast already exists")
		forecast.ID = found.ID
		return nil
	}
	if !errors.Is(err, manager.ErrNotFound) {
		return err
	}

	row := Forecast{
		Date:        formatDate(forecast.Date),
		CityID:      forecast.CityID,
		CityName:    forecast.CityName,
		Weather:     forecast.Weather,
		Temperature: forecast.Temperature,
		TempMin:     forecast.TempMin,
		TempMax:     forecast.TempMax,
		Provider:    forecast.Provider.String(),
	}

	log.Debug().Str("date", row.Date).Str("provider", row.Provider).Msg("saving new forecast")

	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("save forecast: %w", err)
	}

	forecast.ID = row.ID
	return nil
}

// FindCity returns the first city matching name, and region and country when
// they are not empty. A city with no region matches any region.
func (s *Store) FindCity(ctx context.Context, name, region, country string) (*manager.City, error) {
	zerolog.Ctx(ctx).Debug().Str("name", name).Str("region", region).Str("country", country).Msg("querying one city")

	row, err := s.findCityRow(ctx, name, region, country)
	if err != nil {
		return nil, err
	}

	city := toCity(row)
	return &city, nil
}

// FindCities returns every city called name, most often chosen first.
func (s *Store) FindCities(ctx context.Context, name, country string) ([]manager.City, error) {
	zerolog.Ctx(ctx).Debug().Str("name", name).Str("country", country).Msg("querying all cities")

	query := s.db.WithContext(ctx).Where("search_name = ?", searchName(name))
	if country != "" {
		query = query.Where("country = ?", strings.ToUpper(country))
	}

	var rows []City
	if err := query.Order("chosen DESC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	cities := make([]manager.City, 0, len(rows))
	for _, row := range rows {
		cities = append(cities, toCity(row))
	}
	return cities, nil
}

// SaveCity merges city into a matching stored city, filling in only the
// region and location keys it does not have yet, or creates it.
func (s *Store) SaveCity(ctx context.Context, city manager.City) (*manager.City, error) {
	log := zerolog.Ctx(ctx)

	row, err := s.findCityRow(ctx, city.Name, city.Region, city.Country)
	switch {
	case errors.Is(err, manager.ErrNotFound):
		log.Debug().Str("name", city.Name).Msg("no city found, saving new one")
		row = City{
			Name:       strings.TrimSpace(city.Name),
			SearchName: searchName(city.Name),
			Country:    strings.ToUpper(city.Country),
			Lat:        manager.Round(city.Lat, 2),
			Lon:        manager.Round(city.Lon, 2),
			Chosen:     city.Chosen,
		}
	case err != nil:
		return nil, err
	default:
		log.Debug().Str("name", city.Name).Uint("id", row.ID).Msg("city already exists, updating")
	}

	if row.Region == "" {
		row.Region = city.Region
	}
	for provider, key := range city.LocationKeys {
		if row.LocationKeys == nil {
			row.LocationKeys = datatypes.JSONMap{}
		}
		if existing, _ := row.LocationKeys[provider.String()].(string); existing == "" && key != "" {
			row.LocationKeys[provider.String()] = key
		}
	}

	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return nil, fmt.Errorf("save city: %w", err)
	}

	saved := toCity(row)
	return &saved, nil
}

func (s *Store) IncrementChosen(ctx context.Context, cityID uint) error {
	res := s.db.WithContext(ctx).
		Model(&City{}).
		Where("id = ?", cityID).
		UpdateColumn("chosen", gorm.Expr("chosen + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return manager.ErrNotFound
	}
	return nil
}

func (s *Store) SetLocationKey(ctx context.Context, cityID uint, provider manager.Provider, key string) error {
	zerolog.Ctx(ctx).Debug().Uint("city_id", cityID).Str("provider", provider.String()).Str("key", key).Msg("saving location key")

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row City
		if err := tx.First(&row, cityID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return manager.ErrNotFound
			}
			return err
		}

		if row.LocationKeys == nil {
			row.LocationKeys = datatypes.JSONMap{}
		}
		row.LocationKeys[provider.String()] = key

		return tx.Model(&row).UpdateColumn("location_keys", row.LocationKeys).Error
	})
}

func (s *Store) findCityRow(ctx context.Context, name, region, country string) (City, error) {
	query := s.db.WithContext(ctx).Where("search_name = ?", searchName(name))
	if region != "" {
		query = query.Where("region = ? OR region = ''", region)
	}
	if country != "" {
		query = query.Where("country = ?", strings.ToUpper(country))
	}

	var row City
	err := query.Order("id ASC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return City{}, manager.ErrNotFound
	}
	return row, err
}

func (s *Store) toForecast(row Forecast) manager.Forecast {
	date, _ := time.ParseInLocation(time.DateOnly, row.Date, s.loc)
	provider, _ := manager.ProviderFromTag(row.Provider)

	return manager.Forecast{
		ID:          row.ID,
		Date:        date,
		CityID:      row.CityID,
		CityName:    row.CityName,
		Weather:     row.Weather,
		Temperature: row.Temperature,
		TempMin:     row.TempMin,
		TempMax:     row.TempMax,
		Provider:    provider,
	}
}

func toCity(row City) manager.City {
	city := manager.City{
		ID:      row.ID,
		Name:    row.Name,
		Region:  row.Region,
		Country: row.Country,
		Lat:     row.Lat,
		Lon:     row.Lon,
		Chosen:  row.Chosen,
	}
	for tag, v := range row.LocationKeys {
		provider, ok := manager.ProviderFromTag(tag)
		key, _ := v.(string)
		if ok && key != "" {
			city.SetLocationKey(provider, key)
		}
	}
	return city
}

func formatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

func searchName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
