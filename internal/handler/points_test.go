package handler

import (
	"net/http"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/envirowatch/internal/model"
)

func newPointEnv() (*echo.Echo, *fakePoints, *fakeRecords, *fakeCache) {
	points := newFakePoints(
		model.MonitoringPoint{ID: 1, Name: "Kuala Lumpur City Centre", Type: model.PointAir, Status: model.StatusActive},
		model.MonitoringPoint{ID: 2, Name: "Gombak River Station", Type: model.PointRiver, Status: model.StatusMaintenance},
	)
	aqi := 42
	records := &fakeRecords{latest: map[uint64]*model.MonitoringRecord{
		1: {ID: 9, MonitoringPointID: 1, Reading: model.Reading{AQI: &aqi}},
	}}
	cache := &fakeCache{}
	h := NewPointHandler(points, records, cache, zap.NewNop())

	e := newEcho()
	g := e.Group("/api/monitoring-points", as(1, model.RoleAdmin))
	g.GET("", h.List)
	g.GET("/stats/by-type", h.StatsByType)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	return e, points, records, cache
}

func TestListPointsFilters(t *testing.T) {
	c := qt.New(t)
	e, _, _, _ := newPointEnv()

	code, resp := call(c, e, http.MethodGet, "/api/monitoring-points?type=river", nil)
	c.Assert(code, qt.Equals, http.StatusOK)
	c.Assert(*resp.Count, qt.Equals, 1)
	c.Assert(decode[[]model.MonitoringPoint](c, resp.Data)[0].Name, qt.Equals, "Gombak River Station")

	code, resp = call(c, e, http.MethodGet, "/api/monitoring-points?status=broken", nil)
	c.Assert(code, qt.Equals, http.StatusBadRequest)
	c.Assert(resp.Errors[0].Message, qt.Equals, "status must be one of: active, inactive, maintenance")
}

func TestGetPointWithLatest(t *testing.T) {
	c := qt.New(t)
	e, _, _, _ := newPointEnv()

	code, resp := call(c, e, http.MethodGet, "/api/monitoring-points/1?includeLatest=true", nil)
	c.Assert(code, qt.Equals, http.StatusOK)
	p := decode[model.PointWithLatest](c, resp.Data)
	c.Assert(*p.LatestRecord.AQI, qt.Equals, 42)

	code, resp = call(c, e, http.MethodGet, "/api/monitoring-points/2?includeLatest=true", nil)
	c.Assert(code, qt.Equals, http.StatusOK)
	c.Assert(decode[model.PointWithLatest](c, resp.Data).LatestRecord, qt.IsNil)

	code, _ = call(c, e, http.MethodGet, "/api/monitoring-points/0", nil)
	c.Assert(code, qt.Equals, http.StatusBadRequest)
}

func TestCreateUpdateDeletePoint(t *testing.T) {
	c := qt.New(t)
	e, points, _, cache := newPointEnv()

	code, resp := call(c, e, http.MethodPost, "/api/monitoring-points", map[string]any{
		"name": "Johor Strait Buoy", "latitude": 1.4655, "longitude": 103.7578, "type": "marine", "installedDate": "2024-08-01",
	})
	c.Assert(code, qt.Equals, http.StatusCreated)
	p := decode[model.MonitoringPoint](c, resp.Data)
	c.Assert(p.ID, qt.Equals, uint64(3))
	c.Assert(*p.CreatedBy, qt.Equals, uint64(1))
	c.Assert(p.InstalledDate.Format("2006-01-02"), qt.Equals, "2024-08-01")

	code, resp = call(c, e, http.MethodPost, "/api/monitoring-points", map[string]any{
		"name": "Nowhere", "latitude": 91, "type": "volcano",
	})
	c.Assert(code, qt.Equals, http.StatusBadRequest)
	c.Assert(fieldNames(resp.Errors), qt.DeepEquals, []string{"latitude", "longitude", "type"})

	code, resp = call(c, e, http.MethodPut, "/api/monitoring-points/2", map[string]any{"status": "active"})
	c.Assert(code, qt.Equals, http.StatusOK)
	c.Assert(decode[model.MonitoringPoint](c, resp.Data).Status, qt.Equals, model.StatusActive)

	code, _ = call(c, e, http.MethodDelete, "/api/monitoring-points/2", nil)
	c.Assert(code, qt.Equals, http.StatusOK)
	c.Assert(points.points, qt.HasLen, 2)
	code, _ = call(c, e, http.MethodDelete, "/api/monitoring-points/2", nil)
	c.Assert(code, qt.Equals, http.StatusNotFound)

	c.Assert(cache.invalidated, qt.Equals, 3)
}

func TestPointStatsByType(t *testing.T) {
	c := qt.New(t)
	e, _, _, _ := newPointEnv()

	code, resp := call(c, e, http.MethodGet, "/api/monitoring-points/stats/by-type", nil)
	c.Assert(code, qt.Equals, http.StatusOK)
	c.Assert(decode[[]model.PointTypeStats](c, resp.Data), qt.DeepEquals, []model.PointTypeStats{
		{Type: model.PointAir, Count: 1, ActiveCount: 1},
		{Type: model.PointRiver, Count: 1, ActiveCount: 0},
	})
}
