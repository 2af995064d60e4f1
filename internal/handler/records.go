package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/envirowatch/internal/model"
	"github.com/iliyamo/envirowatch/internal/queue"
)

// RecordStore is the monitoring record repository.
type RecordStore interface {
	Create(ctx context.Context, pointID uint64, recordedAt time.Time, rd model.Reading, notes *string) (*model.MonitoringRecord, error)
	GetByID(ctx context.Context, id uint64) (*model.MonitoringRecord, error)
	List(ctx context.Context, f model.RecordFilter) ([]model.RecordWithPoint, error)
	LatestForAllPoints(ctx context.Context) ([]model.LatestReading, error)
	StatsByPoint(ctx context.Context, pointID uint64, days int) (model.PointStats, error)
	TimeSeries(ctx context.Context, pointID uint64, param string, start, end time.Time) ([]model.TimeSeriesPoint, error)
	DashboardStats(ctx context.Context) (model.DashboardStats, error)
}

// PointGetter loads a single monitoring point.
type PointGetter interface {
	GetByID(ctx context.Context, id uint64) (*model.MonitoringPoint, error)
}

// EventPublisher announces new records to other processes.
type EventPublisher interface {
	PublishRecordCreated(ctx context.Context, ev queue.RecordCreatedEvent) error
}

const (
	defaultRecordLimit = 100
	defaultStatsDays   = 7
	defaultSeriesDays  = 7
)

type RecordHandler struct {
	records   RecordStore
	points    PointGetter
	publisher EventPublisher
	cache     CacheInvalidator
	log       *zap.Logger
}

func NewRecordHandler(records RecordStore, points PointGetter, publisher EventPublisher, cache CacheInvalidator, log *zap.Logger) *RecordHandler {
	return &RecordHandler{records: records, points: points, publisher: publisher, cache: cache, log: log}
}

type listRecordsReq struct {
	PointID   uint64 `query:"monitoringPointId"`
	StartDate string `query:"startDate" validate:"omitempty,timestamp"`
	EndDate   string `query:"endDate" validate:"omitempty,timestamp"`
	Limit     *int   `query:"limit" validate:"omitempty,gte=1,lte=1000"`
	Offset    int    `query:"offset" validate:"gte=0"`
}

type pointStatsReq struct {
	Days *int `query:"days" validate:"omitempty,gte=1,lte=365"`
}

type timeSeriesReq struct {
	PointID   uint64 `query:"monitoringPointId" validate:"required"`
	Parameter string `query:"parameter" validate:"required,oneof=pm25 pm10 aqi temperature humidity ph dissolved_oxygen turbidity conductivity"`
	StartDate string `query:"startDate" validate:"omitempty,timestamp"`
	EndDate   string `query:"endDate" validate:"omitempty,timestamp"`
}

type createRecordReq struct {
	PointID         uint64   `json:"monitoringPointId" validate:"required"`
	RecordedAt      string   `json:"recordedAt" validate:"omitempty,timestamp"`
	PM25            *float64 `json:"pm25" validate:"omitempty,gte=0"`
	PM10            *float64 `json:"pm10" validate:"omitempty,gte=0"`
	AQI             *int     `json:"aqi" validate:"omitempty,gte=0"`
	Temperature     *float64 `json:"temperature"`
	Humidity        *float64 `json:"humidity" validate:"omitempty,gte=0,lte=100"`
	PH              *float64 `json:"ph" validate:"omitempty,gte=0,lte=14"`
	DissolvedOxygen *float64 `json:"dissolvedOxygen" validate:"omitempty,gte=0"`
	Turbidity       *float64 `json:"turbidity" validate:"omitempty,gte=0"`
	Conductivity    *float64 `json:"conductivity" validate:"omitempty,gte=0"`
	Notes           *string  `json:"notes" validate:"omitempty,max=2000"`
}

func (r createRecordReq) reading() model.Reading {
	return model.Reading{
		PM25: r.PM25, PM10: r.PM10, AQI: r.AQI, Temperature: r.Temperature, Humidity: r.Humidity,
		PH: r.PH, DissolvedOxygen: r.DissolvedOxygen, Turbidity: r.Turbidity, Conductivity: r.Conductivity,
	}
}

// parseTimestamp accepts RFC 3339 timestamps and plain dates.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, s)
}

// List returns records joined with their point, newest first.
func (h *RecordHandler) List(c echo.Context) error {
	var req listRecordsReq
	if valid, err := bindAndValidate(c, &req); !valid {
		return err
	}
	f := model.RecordFilter{PointID: req.PointID, Limit: defaultRecordLimit, Offset: req.Offset}
	if req.Limit != nil {
		f.Limit = *req.Limit
	}
	if req.StartDate != "" {
		t, _ := parseTimestamp(req.StartDate)
		f.Start = &t
	}
	if req.EndDate != "" {
		t, _ := parseTimestamp(req.EndDate)
		f.End = &t
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	recs, err := h.records.List(ctx, f)
	if err != nil {
		return failErr(c, h.log, err, "list records")
	}
	return successList(c, recs)
}

// Latest returns every active point with its newest record.
func (h *RecordHandler) Latest(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	latest, err := h.records.LatestForAllPoints(ctx)
	if err != nil {
		return failErr(c, h.log, err, "latest records")
	}
	return successList(c, latest)
}

// Dashboard returns the network summary.
func (h *RecordHandler) Dashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	stats, err := h.records.DashboardStats(ctx)
	if err != nil {
		return failErr(c, h.log, err, "dashboard stats")
	}
	return success(c, http.StatusOK, stats)
}

// PointStats aggregates one point's readings over ?days= (default 7).
func (h *RecordHandler) PointStats(c echo.Context) error {
	id, valid := parseID(c, "pointId")
	if !valid {
		return fail(c, http.StatusBadRequest, "Invalid monitoring point id")
	}
	var req pointStatsReq
	if valid, err := bindAndValidate(c, &req); !valid {
		return err
	}
	days := defaultStatsDays
	if req.Days != nil {
		days = *req.Days
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if _, err := h.points.GetByID(ctx, id); err != nil {
		return failErr(c, h.log, err, "get point")
	}
	stats, err := h.records.StatsByPoint(ctx, id, days)
	if err != nil {
		return failErr(c, h.log, err, "point stats")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": stats, "days": days})
}

// TimeSeries returns one parameter of a point over a window, which
// defaults to the last seven days.
func (h *RecordHandler) TimeSeries(c echo.Context) error {
	var req timeSeriesReq
	if valid, err := bindAndValidate(c, &req); !valid {
		return err
	}
	end := time.Now().UTC()
	if req.EndDate != "" {
		end, _ = parseTimestamp(req.EndDate)
	}
	start := end.AddDate(0, 0, -defaultSeriesDays)
	if req.StartDate != "" {
		start, _ = parseTimestamp(req.StartDate)
	}
	if start.After(end) {
		return failFields(c, []FieldError{{Field: "startDate", Message: "startDate must not be after endDate"}})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	series, err := h.records.TimeSeries(ctx, req.PointID, req.Parameter, start, end)
	if err != nil {
		return failErr(c, h.log, err, "time series")
	}
	return successList(c, series)
}

// Get returns one record.
func (h *RecordHandler) Get(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "Invalid monitoring record id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	rec, err := h.records.GetByID(ctx, id)
	if err != nil {
		return failErr(c, h.log, err, "get record")
	}
	return success(c, http.StatusOK, rec)
}

// errTypeMismatch is reported when a reading carries fields of the other
// kind of point.
var errTypeMismatch = errors.New("reading fields do not match the monitoring point type")

// Create stores a reading and announces it on the broker.  Air points only
// take air fields and water points only water fields.
func (h *RecordHandler) Create(c echo.Context) error {
	var req createRecordReq
	if valid, err := bindAndValidate(c, &req); !valid {
		return err
	}
	var recordedAt time.Time
	if req.RecordedAt != "" {
		recordedAt, _ = parseTimestamp(req.RecordedAt)
	}
	rd := req.reading()
	if req.Notes != nil {
		n := strings.TrimSpace(*req.Notes)
		req.Notes = &n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	p, err := h.points.GetByID(ctx, req.PointID)
	if err != nil {
		return failErr(c, h.log, err, "get point")
	}
	if !rd.MatchesType(p.Type) {
		return fail(c, http.StatusBadRequest, errTypeMismatch.Error())
	}

	rec, err := h.records.Create(ctx, p.ID, recordedAt, rd, req.Notes)
	if err != nil {
		return failErr(c, h.log, err, "create record")
	}
	if h.cache != nil {
		if err := h.cache.Invalidate(ctx); err != nil {
			h.log.Warn("cache invalidation failed", zap.Error(err))
		}
	}
	if h.publisher != nil {
		// delivery is best effort; the record is already stored
		_ = h.publisher.PublishRecordCreated(ctx, queue.RecordCreatedEvent{
			RecordID:   rec.ID,
			PointID:    p.ID,
			PointName:  p.Name,
			PointType:  p.Type,
			RecordedAt: rec.RecordedAt,
			Reading:    rec.Reading,
		})
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "message": "Monitoring record created successfully", "data": rec})
}
