package store

import (
	"time"

	"gorm.io/datatypes"
)

type City struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	SearchName   string `gorm:"index;not null"`
	Region       string
	Country      string `gorm:"size:2;index"`
	Lat          float64
	Lon          float64
	LocationKeys datatypes.JSONMap
	Chosen       int `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Forecast struct {
	ID          uint   `gorm:"primaryKey"`
	Date        string `gorm:"size:10;not null;uniqueIndex:idx_forecast_key"`
	CityID      uint   `gorm:"not null;uniqueIndex:idx_forecast_key"`
	CityName    string
	Weather     string `gorm:"not null"`
	Temperature *float64
	TempMin     float64
	TempMax     float64
	Provider    string `gorm:"size:32;not null;uniqueIndex:idx_forecast_key"`
	CreatedAt   time.Time
}

// QuotaEntry counts the calls made to one provider on one day.
type QuotaEntry struct {
	ID        uint   `gorm:"primaryKey"`
	Date      string `gorm:"size:10;not null;uniqueIndex:idx_quota_key"`
	Provider  string `gorm:"size:32;not null;uniqueIndex:idx_quota_key"`
	Calls     int    `gorm:"not null;default:0"`
	Limit     int    `gorm:"column:call_limit;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Models lists every table owned by the store, in migration order.
func Models() []interface{} {
	return []interface{}{&City{}, &Forecast{}, &QuotaEntry{}}
}
