package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/envirowatch/internal/chatbot"
	"github.com/iliyamo/envirowatch/internal/model"
)

const maxBackoff = 30 * time.Second

// Alert describes a reading that needs attention.
type Alert struct {
	Reason string
	Level  string
}

// Evaluate checks a new reading against the air and water bands.  It
// returns nil when the reading is unremarkable.
func Evaluate(ev RecordCreatedEvent) *Alert {
	rd := ev.Reading
	switch {
	case ev.PointType == model.PointAir && rd.AQI != nil:
		band := chatbot.ClassifyAQI(*rd.AQI)
		if *rd.AQI > 100 {
			return &Alert{Reason: fmt.Sprintf("AQI %d", *rd.AQI), Level: string(band)}
		}
	case ev.PointType.IsWater() && rd.PH != nil:
		oxygen := math.NaN()
		if rd.DissolvedOxygen != nil {
			oxygen = *rd.DissolvedOxygen
		}
		status := chatbot.AssessWater(*rd.PH, oxygen)
		if status != chatbot.WaterGood {
			return &Alert{Reason: status.Summary(), Level: string(status)}
		}
	}
	return nil
}

// StartAlertConsumer consumes record.created events from the broker at url
// and logs an alert for every reading outside the healthy bands.  It
// reconnects with exponential backoff and returns only when ctx is done.
func StartAlertConsumer(ctx context.Context, url string, log *zap.Logger) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("alert consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("alert consumer: consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, log *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("alert consumer: set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(RecordCreatedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(RecordCreatedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	log.Info("alert consumer: waiting for records", zap.String("queue", RecordCreatedQueue))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleMessage(d.Body, log); err != nil {
				log.Warn("alert consumer: handle message failed", zap.Error(err))
				_ = d.Nack(false, false) // do not requeue poison messages
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func handleMessage(body []byte, log *zap.Logger) error {
	var ev RecordCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.PointID == 0 || !ev.PointType.Valid() {
		return fmt.Errorf("invalid event for point %d type %q", ev.PointID, ev.PointType)
	}
	if a := Evaluate(ev); a != nil {
		log.Warn("environmental alert",
			zap.Uint64("record_id", ev.RecordID),
			zap.Uint64("point_id", ev.PointID),
			zap.String("point_name", ev.PointName),
			zap.String("point_type", string(ev.PointType)),
			zap.Time("recorded_at", ev.RecordedAt),
			zap.String("level", a.Level),
			zap.String("reason", a.Reason))
	}
	return nil
}
