// Package seed fills an empty database with demo users, monitoring points
// around the Klang Valley, a month of readings and one chat session.
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/iliyamo/envirowatch/internal/model"
	"github.com/iliyamo/envirowatch/internal/utils"
)

// Demo credentials created by Run.
const (
	AdminEmail    = "admin@envirowatch.com"
	AdminPassword = "Admin123!"
	UserPassword  = "User123!"
)

// Options controls a seeding run.  Zero values pick the defaults.
type Options struct {
	Days       int              // days of history per point, default 30
	Every      time.Duration    // spacing between readings, default 3h
	BcryptCost int              // cost for the demo password hashes
	Now        func() time.Time // clock, default time.Now
	Rand       *rand.Rand       // source for the synthetic readings
}

// Summary reports what Run inserted.
type Summary struct {
	Users    int
	Points   int
	Records  int
	Messages int
}

type seedUser struct {
	email, password, fullName string
	role                      model.Role
}

var users = []seedUser{
	{AdminEmail, AdminPassword, "System Administrator", model.RoleAdmin},
	{"john.doe@envirowatch.com", UserPassword, "John Doe", model.RoleUser},
	{"jane.smith@envirowatch.com", UserPassword, "Jane Smith", model.RoleUser},
}

type seedPoint struct {
	name, description string
	lat, lng          float64
	typ               model.PointType
	status            model.PointStatus
	installed         string
}

var points = []seedPoint{
	{"Kuala Lumpur City Centre", "Air quality monitoring in KLCC area", 3.1578, 101.7118, model.PointAir, model.StatusActive, "2023-01-15"},
	{"Port Klang Marine Monitor", "Marine water quality monitoring", 3.0044, 101.3900, model.PointMarine, model.StatusActive, "2023-02-01"},
	{"Klang River Station 1", "River water quality - upstream", 3.0403, 101.4454, model.PointRiver, model.StatusActive, "2023-03-10"},
	{"Klang River Station 2", "River water quality - midstream", 3.1412, 101.6869, model.PointRiver, model.StatusActive, "2023-03-10"},
	{"Petaling Jaya Air Station", "Air quality in residential area", 3.1073, 101.6067, model.PointAir, model.StatusActive, "2023-04-05"},
	{"Putrajaya Lake Monitor", "Lake water quality monitoring", 2.9264, 101.6964, model.PointMarine, model.StatusActive, "2023-05-20"},
	{"Gombak River Station", "River water quality monitoring", 3.2599, 101.6519, model.PointRiver, model.StatusMaintenance, "2023-06-01"},
	{"Shah Alam Air Station", "Air quality in industrial area", 3.0733, 101.5185, model.PointAir, model.StatusActive, "2023-07-15"},
}

const sessionTitle = "Air Quality in Kuala Lumpur"

var sessionMessages = []struct {
	role    model.MessageRole
	content string
}{
	{model.MessageUser, "What is the current air quality in Kuala Lumpur?"},
	{model.MessageAssistant, "Based on recent monitoring data, the air quality in Kuala Lumpur is currently MODERATE. The KLCC station reports an AQI of 87, with PM2.5 levels at 32 µg/m³. The Petaling Jaya station shows similar readings. Would you like detailed information about specific pollutants?"},
	{model.MessageUser, "What about water quality in Klang River?"},
	{model.MessageAssistant, "The Klang River monitoring stations show improving water quality trends. Station 1 (upstream) reports a pH of 7.2 and dissolved oxygen at 6.8 mg/L, which are within acceptable ranges. Station 2 (midstream) shows slightly lower DO at 5.9 mg/L. Turbidity levels are moderate at both stations. The overall water quality is classified as FAIR and continues to improve due to ongoing rehabilitation efforts."},
}

const (
	insertUser = `INSERT INTO users (email, password_hash, full_name, role) VALUES (?, ?, ?, ?)`

	insertPoint = `INSERT INTO monitoring_points
		(name, description, latitude, longitude, type, status, installed_date, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	insertRecord = `INSERT INTO monitoring_records
		(monitoring_point_id, recorded_at, pm25, pm10, aqi, temperature, humidity, ph, dissolved_oxygen, turbidity, conductivity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	insertSession = `INSERT INTO chat_sessions (user_id, title) VALUES (?, ?)`

	insertMessage = `INSERT INTO chat_messages (session_id, role, content) VALUES (?, ?, ?)`
)

// Run inserts the demo data in a single transaction.  Any failure rolls
// the whole run back.
func Run(ctx context.Context, db *sqlx.DB, opts Options, log *zap.Logger) (Summary, error) {
	opts = withDefaults(opts)

	// hash before opening the transaction, bcrypt is slow
	hashes := make(map[string]string, 2)
	for _, u := range users {
		if _, done := hashes[u.password]; done {
			continue
		}
		h, err := utils.HashPassword(u.password, opts.BcryptCost)
		if err != nil {
			return Summary{}, err
		}
		hashes[u.password] = h
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return Summary{}, fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var sum Summary
	var adminID int64
	for i, u := range users {
		res, err := tx.ExecContext(ctx, insertUser, u.email, hashes[u.password], u.fullName, u.role)
		if err != nil {
			return Summary{}, fmt.Errorf("insert user %s: %w", u.email, err)
		}
		if i == 0 {
			if adminID, err = res.LastInsertId(); err != nil {
				return Summary{}, err
			}
		}
		sum.Users++
	}
	log.Info("seeded users", zap.Int("count", sum.Users))

	pointIDs := make([]int64, len(points))
	for i, p := range points {
		installed, err := time.Parse(time.DateOnly, p.installed)
		if err != nil {
			return Summary{}, err
		}
		res, err := tx.ExecContext(ctx, insertPoint, p.name, p.description, p.lat, p.lng, p.typ, p.status, installed, adminID)
		if err != nil {
			return Summary{}, fmt.Errorf("insert point %q: %w", p.name, err)
		}
		if pointIDs[i], err = res.LastInsertId(); err != nil {
			return Summary{}, err
		}
		sum.Points++
	}
	log.Info("seeded monitoring points", zap.Int("count", sum.Points))

	stmt, err := tx.PreparexContext(ctx, insertRecord)
	if err != nil {
		return Summary{}, fmt.Errorf("prepare records: %w", err)
	}
	defer stmt.Close()

	start := opts.Now().UTC().Truncate(time.Hour).AddDate(0, 0, -opts.Days)
	end := opts.Now().UTC()
	for i, p := range points {
		for at := start; at.Before(end); at = at.Add(opts.Every) {
			rd := syntheticReading(p.typ, opts.Rand)
			if _, err := stmt.ExecContext(ctx, pointIDs[i], at,
				rd.PM25, rd.PM10, rd.AQI, rd.Temperature, rd.Humidity,
				rd.PH, rd.DissolvedOxygen, rd.Turbidity, rd.Conductivity,
			); err != nil {
				return Summary{}, fmt.Errorf("insert record for %q: %w", p.name, err)
			}
			sum.Records++
		}
	}
	log.Info("seeded monitoring records", zap.Int("count", sum.Records), zap.Int("days", opts.Days))

	res, err := tx.ExecContext(ctx, insertSession, adminID, sessionTitle)
	if err != nil {
		return Summary{}, fmt.Errorf("insert chat session: %w", err)
	}
	sessionID, err := res.LastInsertId()
	if err != nil {
		return Summary{}, err
	}
	for _, m := range sessionMessages {
		if _, err := tx.ExecContext(ctx, insertMessage, sessionID, m.role, m.content); err != nil {
			return Summary{}, fmt.Errorf("insert chat message: %w", err)
		}
		sum.Messages++
	}

	if err := tx.Commit(); err != nil {
		return Summary{}, fmt.Errorf("commit seed: %w", err)
	}
	return sum, nil
}

func withDefaults(o Options) Options {
	if o.Days <= 0 {
		o.Days = 30
	}
	if o.Every <= 0 {
		o.Every = 3 * time.Hour
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return o
}

// syntheticReading draws plausible values for a point of type t.
func syntheticReading(t model.PointType, r *rand.Rand) model.Reading {
	between := func(lo, hi float64) *float64 {
		v := lo + r.Float64()*(hi-lo)
		return &v
	}
	if t == model.PointAir {
		aqi := 20 + r.IntN(150)
		return model.Reading{
			PM25:        between(10, 60),
			PM10:        between(20, 100),
			AQI:         &aqi,
			Temperature: between(25, 35),
			Humidity:    between(60, 90),
		}
	}
	return model.Reading{
		PH:              between(6.5, 8.5),
		DissolvedOxygen: between(5, 10),
		Turbidity:       between(5, 25),
		Conductivity:    between(200, 500),
		Temperature:     between(26, 31),
	}
}
