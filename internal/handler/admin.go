package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/envirowatch/internal/model"
	"github.com/iliyamo/envirowatch/internal/repository"
)

// AdminUserStore is the part of the user repository the admin panel uses.
type AdminUserStore interface {
	List(ctx context.Context) ([]model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	UpdateRole(ctx context.Context, id uint64, role model.Role) (*model.User, error)
	UpdateActive(ctx context.Context, id uint64, active bool) (*model.User, error)
	Delete(ctx context.Context, id uint64) error
	Stats(ctx context.Context) (model.UserStats, error)
}

// PointCounter counts monitoring points per type.
type PointCounter interface {
	StatsByType(ctx context.Context) ([]model.PointTypeStats, error)
}

// RecordMaintainer provides the reading summary and the retention purge.
type RecordMaintainer interface {
	DashboardStats(ctx context.Context) (model.DashboardStats, error)
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}

// SystemReporter reports on the database.
type SystemReporter interface {
	Ping(ctx context.Context) (time.Duration, error)
	TableStats(ctx context.Context) ([]repository.TableStat, error)
}

type AdminHandler struct {
	users   AdminUserStore
	points  PointCounter
	records RecordMaintainer
	system  SystemReporter
	cache   CacheInvalidator
	started time.Time
	log     *zap.Logger
}

func NewAdminHandler(users AdminUserStore, points PointCounter, records RecordMaintainer, system SystemReporter, cache CacheInvalidator, log *zap.Logger) *AdminHandler {
	return &AdminHandler{users: users, points: points, records: records, system: system, cache: cache, started: time.Now(), log: log}
}

type roleReq struct {
	Role string `json:"role" validate:"required,oneof=admin user"`
}

type statusReq struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

type purgeReq struct {
	OlderThanDays int `query:"olderThanDays" validate:"required,gte=1,lte=3650"`
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	users, err := h.users.List(ctx)
	if err != nil {
		return failErr(c, h.log, err, "list users")
	}
	return successList(c, users)
}

func (h *AdminHandler) GetUser(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "Invalid user id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, err := h.users.GetByID(ctx, id)
	if err != nil {
		return failErr(c, h.log, err, "get user")
	}
	return success(c, http.StatusOK, u)
}

// targetOther parses the :id parameter and refuses the caller's own id.
// It writes the error reply itself; ok is false when it did.
func (h *AdminHandler) targetOther(c echo.Context, action string) (id uint64, ok bool, err error) {
	id, valid := parseID(c, "id")
	if !valid {
		return 0, false, fail(c, http.StatusBadRequest, "Invalid user id")
	}
	if self, _ := getUserID(c); self == id {
		return 0, false, fail(c, http.StatusForbidden, "You cannot "+action+" your own account")
	}
	return id, true, nil
}

// UpdateRole promotes or demotes another user.
func (h *AdminHandler) UpdateRole(c echo.Context) error {
	id, proceed, err := h.targetOther(c, "change the role of")
	if !proceed {
		return err
	}
	var req roleReq
	if valid, err := bindAndValidate(c, &req); !valid {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, err := h.users.UpdateRole(ctx, id, model.Role(req.Role))
	if err != nil {
		return failErr(c, h.log, err, "update role")
	}
	h.log.Info("user role changed", zap.Uint64("user_id", id), zap.String("role", req.Role))
	return successMessage(c, "User role updated successfully", u)
}

// UpdateStatus activates or deactivates another user.
func (h *AdminHandler) UpdateStatus(c echo.Context) error {
	id, proceed, err := h.targetOther(c, "change the status of")
	if !proceed {
		return err
	}
	var req statusReq
	if valid, err := bindAndValidate(c, &req); !valid {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, err := h.users.UpdateActive(ctx, id, *req.IsActive)
	if err != nil {
		return failErr(c, h.log, err, "update status")
	}
	msg := "User deactivated successfully"
	if u.IsActive {
		msg = "User activated successfully"
	}
	return successMessage(c, msg, u)
}

// DeleteUser removes another user.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, proceed, err := h.targetOther(c, "delete")
	if !proceed {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.users.Delete(ctx, id); err != nil {
		return failErr(c, h.log, err, "delete user")
	}
	h.log.Info("user deleted", zap.Uint64("user_id", id))
	return successMessage(c, "User deleted successfully", nil)
}

// Stats summarises users, points and current readings.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	users, err := h.users.Stats(ctx)
	if err != nil {
		return failErr(c, h.log, err, "user stats")
	}
	points, err := h.points.StatsByType(ctx)
	if err != nil {
		return failErr(c, h.log, err, "point stats")
	}
	dash, err := h.records.DashboardStats(ctx)
	if err != nil {
		return failErr(c, h.log, err, "dashboard stats")
	}
	var total, active int64
	for _, p := range points {
		total += p.Count
		active += p.ActiveCount
	}
	return success(c, http.StatusOK, echo.Map{
		"users": users,
		"points": echo.Map{
			"total":   total,
			"active":  active,
			"by_type": points,
		},
		"monitoring": dash,
	})
}

// Health reports database reachability, table sizes and process figures.
// An unreachable database gives 503.
func (h *AdminHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	body := echo.Map{
		"status":         "healthy",
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
		"go_version":     runtime.Version(),
		"goroutines":     runtime.NumGoroutine(),
		"memory": echo.Map{
			"alloc_bytes": mem.Alloc,
			"sys_bytes":   mem.Sys,
			"num_gc":      mem.NumGC,
		},
	}

	latency, err := h.system.Ping(ctx)
	if err != nil {
		h.log.Error("database ping failed", zap.Error(err))
		body["status"] = "unhealthy"
		body["database"] = echo.Map{"connected": false}
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"success": false, "message": "Database unavailable", "data": body})
	}
	db := echo.Map{"connected": true, "latency_ms": float64(latency.Microseconds()) / 1000}
	if tables, err := h.system.TableStats(ctx); err != nil {
		h.log.Warn("table stats failed", zap.Error(err))
	} else {
		db["tables"] = tables
	}
	body["database"] = db
	return success(c, http.StatusOK, body)
}

// PurgeRecords deletes records older than ?olderThanDays=.
func (h *AdminHandler) PurgeRecords(c echo.Context) error {
	var req purgeReq
	if valid, err := bindAndValidate(c, &req); !valid {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	n, err := h.records.DeleteOlderThan(ctx, req.OlderThanDays)
	if err != nil {
		return failErr(c, h.log, err, "purge records")
	}
	if h.cache != nil {
		if err := h.cache.Invalidate(ctx); err != nil {
			h.log.Warn("cache invalidation failed", zap.Error(err))
		}
	}
	h.log.Info("records purged", zap.Int("older_than_days", req.OlderThanDays), zap.Int64("deleted", n))
	return successMessage(c, "Old records deleted", echo.Map{"deleted": n, "olderThanDays": req.OlderThanDays})
}
