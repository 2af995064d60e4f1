package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/envirowatch/internal/model"
)

const recordColumns = `id, monitoring_point_id, recorded_at, pm25, pm10, aqi, temperature, humidity,
	ph, dissolved_oxygen, turbidity, conductivity, notes, created_at`

// latestPerPoint ranks each point's records newest first.
const latestPerPoint = `
	SELECT r.*, ROW_NUMBER() OVER (PARTITION BY r.monitoring_point_id ORDER BY r.recorded_at DESC, r.id DESC) AS rn
	FROM monitoring_records r`

type RecordRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewRecordRepo(db *sqlx.DB) *RecordRepo {
	return &RecordRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Create appends a reading to a point.  A zero recordedAt means now.
func (r *RecordRepo) Create(ctx context.Context, pointID uint64, recordedAt time.Time, rd model.Reading, notes *string) (*model.MonitoringRecord, error) {
	if recordedAt.IsZero() {
		recordedAt = r.now()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO monitoring_records
			(monitoring_point_id, recorded_at, pm25, pm10, aqi, temperature, humidity,
			 ph, dissolved_oxygen, turbidity, conductivity, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pointID, recordedAt.UTC(), rd.PM25, rd.PM10, rd.AQI, rd.Temperature, rd.Humidity,
		rd.PH, rd.DissolvedOxygen, rd.Turbidity, rd.Conductivity, notes)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert record id: %w", err)
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a record by id.
func (r *RecordRepo) GetByID(ctx context.Context, id uint64) (*model.MonitoringRecord, error) {
	var rec model.MonitoringRecord
	if err := r.db.GetContext(ctx, &rec, "SELECT "+recordColumns+" FROM monitoring_records WHERE id = ?", id); err != nil {
		return nil, notFound(err, ErrRecordNotFound)
	}
	return &rec, nil
}

// List returns records matching f, newest first, joined with their point.
func (r *RecordRepo) List(ctx context.Context, f model.RecordFilter) ([]model.RecordWithPoint, error) {
	where := []string{}
	args := []any{}
	if f.PointID != 0 {
		where = append(where, "mr.monitoring_point_id = ?")
		args = append(args, f.PointID)
	}
	if f.Start != nil {
		where = append(where, "mr.recorded_at >= ?")
		args = append(args, f.Start.UTC())
	}
	if f.End != nil {
		where = append(where, "mr.recorded_at <= ?")
		args = append(args, f.End.UTC())
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	q := `SELECT mr.id, mr.monitoring_point_id, mr.recorded_at, mr.pm25, mr.pm10, mr.aqi, mr.temperature,
			mr.humidity, mr.ph, mr.dissolved_oxygen, mr.turbidity, mr.conductivity, mr.notes, mr.created_at,
			mp.name AS point_name, mp.type AS point_type
		FROM monitoring_records mr
		JOIN monitoring_points mp ON mp.id = mr.monitoring_point_id
		WHERE ` + cond + `
		ORDER BY mr.recorded_at DESC, mr.id DESC
		LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	out := []model.RecordWithPoint{}
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return out, nil
}

// LatestForPoint returns the newest record of a point, or nil when the point
// has none.
func (r *RecordRepo) LatestForPoint(ctx context.Context, pointID uint64) (*model.MonitoringRecord, error) {
	var rec model.MonitoringRecord
	err := r.db.GetContext(ctx, &rec,
		"SELECT "+recordColumns+" FROM monitoring_records WHERE monitoring_point_id = ? ORDER BY recorded_at DESC, id DESC LIMIT 1",
		pointID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest record: %w", err)
	}
	return &rec, nil
}

// LatestForAllPoints returns one row per active point, ordered by point id,
// carrying the point's newest record (nil columns when it has none).
func (r *RecordRepo) LatestForAllPoints(ctx context.Context) ([]model.LatestReading, error) {
	out := []model.LatestReading{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT mp.id AS monitoring_point_id, mp.name AS point_name, mp.type AS point_type,
		       mp.latitude, mp.longitude, mp.status,
		       lr.id AS record_id, lr.recorded_at, lr.pm25, lr.pm10, lr.aqi, lr.temperature, lr.humidity,
		       lr.ph, lr.dissolved_oxygen, lr.turbidity, lr.conductivity, lr.notes
		FROM monitoring_points mp
		LEFT JOIN (`+latestPerPoint+`) lr ON lr.monitoring_point_id = mp.id AND lr.rn = 1
		WHERE mp.status = 'active'
		ORDER BY mp.id`)
	if err != nil {
		return nil, fmt.Errorf("latest records: %w", err)
	}
	return out, nil
}

// StatsByPoint aggregates a point's readings over the last days days.
func (r *RecordRepo) StatsByPoint(ctx context.Context, pointID uint64, days int) (model.PointStats, error) {
	var s model.PointStats
	since := r.now().AddDate(0, 0, -days)
	err := r.db.GetContext(ctx, &s, `
		SELECT COUNT(*) AS total_records,
		       AVG(pm25) AS avg_pm25, MAX(pm25) AS max_pm25, MIN(pm25) AS min_pm25,
		       AVG(pm10) AS avg_pm10, MAX(pm10) AS max_pm10, MIN(pm10) AS min_pm10,
		       AVG(aqi) AS avg_aqi, MAX(aqi) AS max_aqi, MIN(aqi) AS min_aqi,
		       AVG(temperature) AS avg_temperature, AVG(humidity) AS avg_humidity,
		       AVG(ph) AS avg_ph, AVG(dissolved_oxygen) AS avg_dissolved_oxygen,
		       AVG(turbidity) AS avg_turbidity, AVG(conductivity) AS avg_conductivity
		FROM monitoring_records
		WHERE monitoring_point_id = ? AND recorded_at >= ?`,
		pointID, since)
	if err != nil {
		return s, fmt.Errorf("point stats: %w", err)
	}
	return s, nil
}

// TimeSeries returns the non-null values of one parameter for a point within
// [start, end], oldest first.  param must be one of model.TimeSeriesParams.
func (r *RecordRepo) TimeSeries(ctx context.Context, pointID uint64, param string, start, end time.Time) ([]model.TimeSeriesPoint, error) {
	if !slices.Contains(model.TimeSeriesParams, param) {
		return nil, ErrInvalidParameter
	}
	// param is whitelisted above, so it is safe to splice into the query
	q := `SELECT recorded_at, ` + param + ` AS value
		FROM monitoring_records
		WHERE monitoring_point_id = ? AND recorded_at >= ? AND recorded_at <= ? AND ` + param + ` IS NOT NULL
		ORDER BY recorded_at ASC`
	out := []model.TimeSeriesPoint{}
	if err := r.db.SelectContext(ctx, &out, q, pointID, start.UTC(), end.UTC()); err != nil {
		return nil, fmt.Errorf("time series: %w", err)
	}
	return out, nil
}

// DashboardStats summarises the network: stations reporting and records
// received in the last 24 hours, plus AQI and PM2.5 figures over the latest
// reading of each active point.
func (r *RecordRepo) DashboardStats(ctx context.Context) (model.DashboardStats, error) {
	var s model.DashboardStats
	since := r.now().Add(-24 * time.Hour)
	err := r.db.GetContext(ctx, &s, `
		SELECT
		  (SELECT COUNT(DISTINCT monitoring_point_id) FROM monitoring_records WHERE recorded_at >= ?) AS active_stations,
		  (SELECT COUNT(*) FROM monitoring_records WHERE recorded_at >= ?) AS total_records,
		  AVG(lr.aqi) AS avg_aqi,
		  AVG(lr.pm25) AS avg_pm25,
		  COALESCE(SUM(CASE WHEN lr.aqi <= 50 THEN 1 ELSE 0 END), 0) AS good_air_count,
		  COALESCE(SUM(CASE WHEN lr.aqi > 100 THEN 1 ELSE 0 END), 0) AS unhealthy_air_count
		FROM (`+latestPerPoint+`) lr
		JOIN monitoring_points mp ON mp.id = lr.monitoring_point_id AND mp.status = 'active'
		WHERE lr.rn = 1`,
		since, since)
	if err != nil {
		return s, fmt.Errorf("dashboard stats: %w", err)
	}
	return s, nil
}

// DeleteOlderThan removes records older than days days and returns how
// many were deleted.
func (r *RecordRepo) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM monitoring_records WHERE recorded_at < ?", r.now().AddDate(0, 0, -days))
	if err != nil {
		return 0, fmt.Errorf("purge records: %w", err)
	}
	return res.RowsAffected()
}
