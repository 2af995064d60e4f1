package model

import "time"

// Reading holds the optional measurements of a record.  Air points fill
// PM25, PM10, AQI, Temperature and Humidity; river and marine points fill PH,
// DissolvedOxygen, Turbidity, Conductivity and Temperature.
type Reading struct {
	PM25            *float64 `db:"pm25" json:"pm25"`
	PM10            *float64 `db:"pm10" json:"pm10"`
	AQI             *int     `db:"aqi" json:"aqi"`
	Temperature     *float64 `db:"temperature" json:"temperature"`
	Humidity        *float64 `db:"humidity" json:"humidity"`
	PH              *float64 `db:"ph" json:"ph"`
	DissolvedOxygen *float64 `db:"dissolved_oxygen" json:"dissolved_oxygen"`
	Turbidity       *float64 `db:"turbidity" json:"turbidity"`
	Conductivity    *float64 `db:"conductivity" json:"conductivity"`
}

// HasAirFields reports whether any air-only measurement is set.
func (r Reading) HasAirFields() bool {
	return r.PM25 != nil || r.PM10 != nil || r.AQI != nil || r.Humidity != nil
}

// HasWaterFields reports whether any water-only measurement is set.
func (r Reading) HasWaterFields() bool {
	return r.PH != nil || r.DissolvedOxygen != nil || r.Turbidity != nil || r.Conductivity != nil
}

// MatchesType reports whether the populated fields fit a point of type t.
func (r Reading) MatchesType(t PointType) bool {
	if t == PointAir {
		return !r.HasWaterFields()
	}
	return !r.HasAirFields()
}

// MonitoringRecord mirrors the `monitoring_records` table.  Records are
// append-only.
type MonitoringRecord struct {
	ID                uint64    `db:"id" json:"id"`
	MonitoringPointID uint64    `db:"monitoring_point_id" json:"monitoring_point_id"`
	RecordedAt        time.Time `db:"recorded_at" json:"recorded_at"`
	Reading
	Notes     *string   `db:"notes" json:"notes"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RecordWithPoint is a record joined with its point's name and type.
type RecordWithPoint struct {
	MonitoringRecord
	PointName string    `db:"point_name" json:"point_name"`
	PointType PointType `db:"point_type" json:"point_type"`
}

// LatestReading is one row per active point with the point's most recent
// record.  Record columns are nil when the point has no readings yet.
type LatestReading struct {
	MonitoringPointID uint64      `db:"monitoring_point_id" json:"monitoring_point_id"`
	PointName         string      `db:"point_name" json:"point_name"`
	PointType         PointType   `db:"point_type" json:"point_type"`
	Latitude          float64     `db:"latitude" json:"latitude"`
	Longitude         float64     `db:"longitude" json:"longitude"`
	Status            PointStatus `db:"status" json:"status"`
	RecordID          *uint64     `db:"record_id" json:"record_id"`
	RecordedAt        *time.Time  `db:"recorded_at" json:"recorded_at"`
	Reading
	Notes *string `db:"notes" json:"notes"`
}

// RecordFilter narrows a record listing.
type RecordFilter struct {
	PointID uint64
	Start   *time.Time
	End     *time.Time
	Limit   int
	Offset  int
}

// DashboardStats summarises the network.  Station and record counts cover
// the last 24 hours; the AQI figures use each point's latest reading.
type DashboardStats struct {
	ActiveStations    int64    `db:"active_stations" json:"active_stations"`
	TotalRecords      int64    `db:"total_records" json:"total_records"`
	AvgAQI            *float64 `db:"avg_aqi" json:"avg_aqi"`
	AvgPM25           *float64 `db:"avg_pm25" json:"avg_pm25"`
	GoodAirCount      int64    `db:"good_air_count" json:"good_air_count"`
	UnhealthyAirCount int64    `db:"unhealthy_air_count" json:"unhealthy_air_count"`
}

// PointStats aggregates one point's readings over a window of days.
type PointStats struct {
	TotalRecords       int64    `db:"total_records" json:"total_records"`
	AvgPM25            *float64 `db:"avg_pm25" json:"avg_pm25"`
	MaxPM25            *float64 `db:"max_pm25" json:"max_pm25"`
	MinPM25            *float64 `db:"min_pm25" json:"min_pm25"`
	AvgPM10            *float64 `db:"avg_pm10" json:"avg_pm10"`
	MaxPM10            *float64 `db:"max_pm10" json:"max_pm10"`
	MinPM10            *float64 `db:"min_pm10" json:"min_pm10"`
	AvgAQI             *float64 `db:"avg_aqi" json:"avg_aqi"`
	MaxAQI             *float64 `db:"max_aqi" json:"max_aqi"`
	MinAQI             *float64 `db:"min_aqi" json:"min_aqi"`
	AvgTemperature     *float64 `db:"avg_temperature" json:"avg_temperature"`
	AvgHumidity        *float64 `db:"avg_humidity" json:"avg_humidity"`
	AvgPH              *float64 `db:"avg_ph" json:"avg_ph"`
	AvgDissolvedOxygen *float64 `db:"avg_dissolved_oxygen" json:"avg_dissolved_oxygen"`
	AvgTurbidity       *float64 `db:"avg_turbidity" json:"avg_turbidity"`
	AvgConductivity    *float64 `db:"avg_conductivity" json:"avg_conductivity"`
}

// TimeSeriesPoint is one (time, value) sample of a single parameter.
type TimeSeriesPoint struct {
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
	Value      float64   `db:"value" json:"value"`
}

// TimeSeriesParams lists the record columns a time series may be drawn from.
var TimeSeriesParams = []string{
	"pm25", "pm10", "aqi", "temperature", "humidity",
	"ph", "dissolved_oxygen", "turbidity", "conductivity",
}
