// Package queue defines message payloads exchanged over the message broker
// and the consumer that turns new readings into alerts.
package queue

import (
	"time"

	"github.com/iliyamo/envirowatch/internal/model"
)

// RecordCreatedQueue is the durable queue new monitoring records are
// announced on.
const RecordCreatedQueue = "record.created"

// RecordCreatedEvent is published after a monitoring record is stored.  It
// carries the point details so consumers do not need the database.
type RecordCreatedEvent struct {
	RecordID   uint64          `json:"record_id"`
	PointID    uint64          `json:"point_id"`
	PointName  string          `json:"point_name"`
	PointType  model.PointType `json:"point_type"`
	RecordedAt time.Time       `json:"recorded_at"`
	Reading    model.Reading   `json:"reading"`
}
