package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/envirowatch/internal/model"
)

// PointStore is the monitoring point repository.
type PointStore interface {
	Create(ctx context.Context, p model.MonitoringPoint) (*model.MonitoringPoint, error)
	GetByID(ctx context.Context, id uint64) (*model.MonitoringPoint, error)
	List(ctx context.Context, f model.PointFilter) ([]model.MonitoringPoint, error)
	Update(ctx context.Context, id uint64, u model.PointUpdate) (*model.MonitoringPoint, error)
	Delete(ctx context.Context, id uint64) error
	StatsByType(ctx context.Context) ([]model.PointTypeStats, error)
}

// LatestRecordFinder finds the newest record of a point.
type LatestRecordFinder interface {
	LatestForPoint(ctx context.Context, pointID uint64) (*model.MonitoringRecord, error)
}

// CacheInvalidator drops cached monitoring responses after a write.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type PointHandler struct {
	points  PointStore
	records LatestRecordFinder
	cache   CacheInvalidator
	log     *zap.Logger
}

func NewPointHandler(points PointStore, records LatestRecordFinder, cache CacheInvalidator, log *zap.Logger) *PointHandler {
	return &PointHandler{points: points, records: records, cache: cache, log: log}
}

type listPointsReq struct {
	Type   string `query:"type" validate:"omitempty,oneof=air river marine"`
	Status string `query:"status" validate:"omitempty,oneof=active inactive maintenance"`
}

type createPointReq struct {
	Name          string   `json:"name" validate:"required,max=255"`
	Description   *string  `json:"description"`
	Latitude      *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude     *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Type          string   `json:"type" validate:"required,oneof=air river marine"`
	Status        string   `json:"status" validate:"omitempty,oneof=active inactive maintenance"`
	InstalledDate string   `json:"installedDate" validate:"omitempty,datetime=2006-01-02"`
}

type updatePointReq struct {
	Name          *string  `json:"name" validate:"omitempty,min=1,max=255"`
	Description   *string  `json:"description"`
	Latitude      *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude     *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Type          *string  `json:"type" validate:"omitempty,oneof=air river marine"`
	Status        *string  `json:"status" validate:"omitempty,oneof=active inactive maintenance"`
	InstalledDate *string  `json:"installedDate" validate:"omitempty,datetime=2006-01-02"`
}

// List returns points, optionally filtered by type and status.
func (h *PointHandler) List(c echo.Context) error {
	var req listPointsReq
	if valid, err := bindAndValidate(c, &req); !valid {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	points, err := h.points.List(ctx, model.PointFilter{Type: model.PointType(req.Type), Status: model.PointStatus(req.Status)})
	if err != nil {
		return failErr(c, h.log, err, "list points")
	}
	return successList(c, points)
}

// Get returns one point; with includeLatest=true its newest record is
// attached.
func (h *PointHandler) Get(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "Invalid monitoring point id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	p, err := h.points.GetByID(ctx, id)
	if err != nil {
		return failErr(c, h.log, err, "get point")
	}
	if c.QueryParam("includeLatest") != "true" {
		return success(c, http.StatusOK, p)
	}
	latest, err := h.records.LatestForPoint(ctx, id)
	if err != nil {
		return failErr(c, h.log, err, "latest record")
	}
	return success(c, http.StatusOK, model.PointWithLatest{MonitoringPoint: *p, LatestRecord: latest})
}

// StatsByType counts points per type.
func (h *PointHandler) StatsByType(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	stats, err := h.points.StatsByType(ctx)
	if err != nil {
		return failErr(c, h.log, err, "point stats")
	}
	return success(c, http.StatusOK, stats)
}

// Create adds a point (admin only).  The caller is recorded as its creator.
func (h *PointHandler) Create(c echo.Context) error {
	var req createPointReq
	if valid, err := bindAndValidate(c, &req); !valid {
		return err
	}
	uid, _ := getUserID(c)
	p := model.MonitoringPoint{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		Type:        model.PointType(req.Type),
		Status:      model.PointStatus(req.Status),
		CreatedBy:   &uid,
	}
	if req.InstalledDate != "" {
		d, _ := time.Parse(time.DateOnly, req.InstalledDate) // format checked by the validator
		p.InstalledDate = &d
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	created, err := h.points.Create(ctx, p)
	if err != nil {
		return failErr(c, h.log, err, "create point")
	}
	h.invalidate(ctx)
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "message": "Monitoring point created successfully", "data": created})
}

// Update changes the given fields of a point (admin only).
func (h *PointHandler) Update(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "Invalid monitoring point id")
	}
	var req updatePointReq
	if valid, err := bindAndValidate(c, &req); !valid {
		return err
	}
	u := model.PointUpdate{
		Name:        req.Name,
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	}
	if req.Type != nil {
		t := model.PointType(*req.Type)
		u.Type = &t
	}
	if req.Status != nil {
		s := model.PointStatus(*req.Status)
		u.Status = &s
	}
	if req.InstalledDate != nil {
		d, _ := time.Parse(time.DateOnly, *req.InstalledDate)
		u.InstalledDate = &d
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	p, err := h.points.Update(ctx, id, u)
	if err != nil {
		return failErr(c, h.log, err, "update point")
	}
	h.invalidate(ctx)
	return successMessage(c, "Monitoring point updated successfully", p)
}

// Delete removes a point and its records (admin only).
func (h *PointHandler) Delete(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "Invalid monitoring point id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.points.Delete(ctx, id); err != nil {
		return failErr(c, h.log, err, "delete point")
	}
	h.invalidate(ctx)
	return successMessage(c, "Monitoring point deleted successfully", nil)
}

func (h *PointHandler) invalidate(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(ctx); err != nil {
		h.log.Warn("cache invalidation failed", zap.Error(err))
	}
}
