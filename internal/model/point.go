package model

import "time"

// PointType is the kind of sensor installed at a monitoring point.
type PointType string

const (
	PointAir    PointType = "air"
	PointRiver  PointType = "river"
	PointMarine PointType = "marine"
)

// Valid reports whether t is a known point type.
func (t PointType) Valid() bool {
	switch t {
	case PointAir, PointRiver, PointMarine:
		return true
	}
	return false
}

// IsWater reports whether the point measures water quality.
func (t PointType) IsWater() bool { return t == PointRiver || t == PointMarine }

// PointStatus is the operational state of a monitoring point.
type PointStatus string

const (
	StatusActive      PointStatus = "active"
	StatusInactive    PointStatus = "inactive"
	StatusMaintenance PointStatus = "maintenance"
)

// Valid reports whether s is a known status.
func (s PointStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusMaintenance:
		return true
	}
	return false
}

// MonitoringPoint mirrors the `monitoring_points` table.
type MonitoringPoint struct {
	ID            uint64      `db:"id" json:"id"`
	Name          string      `db:"name" json:"name"`
	Description   *string     `db:"description" json:"description"`
	Latitude      float64     `db:"latitude" json:"latitude"`
	Longitude     float64     `db:"longitude" json:"longitude"`
	Type          PointType   `db:"type" json:"type"`
	Status        PointStatus `db:"status" json:"status"`
	InstalledDate *time.Time  `db:"installed_date" json:"installed_date"`
	CreatedBy     *uint64     `db:"created_by" json:"created_by"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}

// PointWithLatest is a point together with its most recent reading, if any.
type PointWithLatest struct {
	MonitoringPoint
	LatestRecord *MonitoringRecord `json:"latest_record"`
}

// PointFilter narrows a point listing.  Zero values match everything.
type PointFilter struct {
	Type   PointType
	Status PointStatus
}

// PointUpdate carries the fields of a partial update; nil fields are left
// unchanged.
type PointUpdate struct {
	Name          *string
	Description   *string
	Latitude      *float64
	Longitude     *float64
	Type          *PointType
	Status        *PointStatus
	InstalledDate *time.Time
}

// PointTypeStats counts points of one type.
type PointTypeStats struct {
	Type        PointType `db:"type" json:"type"`
	Count       int64     `db:"count" json:"count"`
	ActiveCount int64     `db:"active_count" json:"active_count"`
}
