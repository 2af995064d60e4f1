package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/envirowatch/internal/model"
)

const pointColumns = "id, name, description, latitude, longitude, type, status, installed_date, created_by, created_at, updated_at"

type PointRepo struct{ db *sqlx.DB }

func NewPointRepo(db *sqlx.DB) *PointRepo { return &PointRepo{db: db} }

// Create inserts a monitoring point.  ID and timestamps of p are ignored.
func (r *PointRepo) Create(ctx context.Context, p model.MonitoringPoint) (*model.MonitoringPoint, error) {
	if p.Status == "" {
		p.Status = model.StatusActive
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO monitoring_points (name, description, latitude, longitude, type, status, installed_date, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Description, p.Latitude, p.Longitude, p.Type, p.Status, p.InstalledDate, p.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("insert point: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert point id: %w", err)
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a point by id.
func (r *PointRepo) GetByID(ctx context.Context, id uint64) (*model.MonitoringPoint, error) {
	var p model.MonitoringPoint
	if err := r.db.GetContext(ctx, &p, "SELECT "+pointColumns+" FROM monitoring_points WHERE id = ?", id); err != nil {
		return nil, notFound(err, ErrPointNotFound)
	}
	return &p, nil
}

// List returns points matching f ordered by name.
func (r *PointRepo) List(ctx context.Context, f model.PointFilter) ([]model.MonitoringPoint, error) {
	where := []string{}
	args := []any{}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, f.Type)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	points := []model.MonitoringPoint{}
	q := "SELECT " + pointColumns + " FROM monitoring_points WHERE " + cond + " ORDER BY name ASC, id ASC"
	if err := r.db.SelectContext(ctx, &points, q, args...); err != nil {
		return nil, fmt.Errorf("list points: %w", err)
	}
	return points, nil
}

// Update applies the non-nil fields of u.  An empty update only checks
// that the point exists.
func (r *PointRepo) Update(ctx context.Context, id uint64, u model.PointUpdate) (*model.MonitoringPoint, error) {
	set := []string{}
	args := []any{}
	add := func(col string, v any) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}
	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Description != nil {
		add("description", *u.Description)
	}
	if u.Latitude != nil {
		add("latitude", *u.Latitude)
	}
	if u.Longitude != nil {
		add("longitude", *u.Longitude)
	}
	if u.Type != nil {
		add("type", *u.Type)
	}
	if u.Status != nil {
		add("status", *u.Status)
	}
	if u.InstalledDate != nil {
		add("installed_date", *u.InstalledDate)
	}
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	res, err := r.db.ExecContext(ctx, "UPDATE monitoring_points SET "+strings.Join(set, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("update point: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrPointNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a point together with its records.
func (r *PointRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM monitoring_points WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete point: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPointNotFound
	}
	return nil
}

// StatsByType counts points and active points per type.
func (r *PointRepo) StatsByType(ctx context.Context) ([]model.PointTypeStats, error) {
	stats := []model.PointTypeStats{}
	err := r.db.SelectContext(ctx, &stats, `
		SELECT type,
		       COUNT(*) AS count,
		       COALESCE(SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END), 0) AS active_count
		FROM monitoring_points
		GROUP BY type
		ORDER BY type`)
	if err != nil {
		return nil, fmt.Errorf("point stats: %w", err)
	}
	return stats, nil
}
