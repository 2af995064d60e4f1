package handler

import (
	"net/http"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/envirowatch/internal/model"
)

type recordEnv struct {
	e         *echo.Echo
	records   *fakeRecords
	cache     *fakeCache
	publisher *fakePublisher
}

func newRecordEnv() recordEnv {
	points := newFakePoints(
		model.MonitoringPoint{ID: 1, Name: "Kuala Lumpur City Centre", Type: model.PointAir, Status: model.StatusActive},
		model.MonitoringPoint{ID: 2, Name: "Klang River Station 1", Type: model.PointRiver, Status: model.StatusActive},
	)
	records := &fakeRecords{}
	cache := &fakeCache{}
	publisher := &fakePublisher{}
	h := NewRecordHandler(records, points, publisher, cache, zap.NewNop())

	e := newEcho()
	g := e.Group("/api/monitoring-records", as(2, model.RoleUser))
	g.GET("", h.List)
	g.GET("/latest", h.Latest)
	g.GET("/stats/dashboard", h.Dashboard)
	g.GET("/stats/:pointId", h.PointStats)
	g.GET("/timeseries", h.TimeSeries)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	return recordEnv{e: e, records: records, cache: cache, publisher: publisher}
}

func TestCreateRecordRejectsTypeMismatch(t *testing.T) {
	c := qt.New(t)
	env := newRecordEnv()

	code, resp := call(c, env.e, http.MethodPost, "/api/monitoring-records", map[string]any{
		"monitoringPointId": 1, "aqi": 60, "ph": 7.1,
	})
	c.Assert(code, qt.Equals, http.StatusBadRequest)
	c.Assert(resp.Message, qt.Equals, "reading fields do not match the monitoring point type")

	code, _ = call(c, env.e, http.MethodPost, "/api/monitoring-records", map[string]any{
		"monitoringPointId": 2, "pm25": 12.5,
	})
	c.Assert(code, qt.Equals, http.StatusBadRequest)
	c.Assert(env.records.created, qt.HasLen, 0)
	c.Assert(env.publisher.events, qt.HasLen, 0)
}

func TestCreateRecordStoresAndAnnounces(t *testing.T) {
	c := qt.New(t)
	env := newRecordEnv()

	code, resp := call(c, env.e, http.MethodPost, "/api/monitoring-records", map[string]any{
		"monitoringPointId": 2,
		"recordedAt":        "2025-03-01T10:00:00Z",
		"ph":                9.1,
		"dissolvedOxygen":   4.2,
		"notes":             "  after heavy rain ",
	})
	c.Assert(code, qt.Equals, http.StatusCreated)
	rec := decode[model.MonitoringRecord](c, resp.Data)
	c.Assert(rec.MonitoringPointID, qt.Equals, uint64(2))
	c.Assert(*rec.PH, qt.Equals, 9.1)
	c.Assert(*rec.Notes, qt.Equals, "after heavy rain")
	c.Assert(rec.RecordedAt.Equal(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)), qt.IsTrue)

	// a failing broker does not fail the request
	c.Assert(env.publisher.events, qt.HasLen, 1)
	ev := env.publisher.events[0]
	c.Assert(ev.PointName, qt.Equals, "Klang River Station 1")
	c.Assert(ev.PointType, qt.Equals, model.PointRiver)
	c.Assert(*ev.Reading.DissolvedOxygen, qt.Equals, 4.2)
	c.Assert(env.cache.invalidated, qt.Equals, 1)
}

func TestCreateRecordValidation(t *testing.T) {
	c := qt.New(t)
	env := newRecordEnv()

	code, resp := call(c, env.e, http.MethodPost, "/api/monitoring-records", map[string]any{
		"ph": 15, "humidity": 120, "recordedAt": "last tuesday",
	})
	c.Assert(code, qt.Equals, http.StatusBadRequest)
	c.Assert(fieldNames(resp.Errors), qt.DeepEquals, []string{"monitoringPointId", "recordedAt", "humidity", "ph"})

	code, resp = call(c, env.e, http.MethodPost, "/api/monitoring-records", map[string]any{"monitoringPointId": 42, "aqi": 10})
	c.Assert(code, qt.Equals, http.StatusNotFound)
	c.Assert(resp.Message, qt.Equals, "Monitoring point not found")
}

func TestListRecordsQueryValidation(t *testing.T) {
	c := qt.New(t)
	env := newRecordEnv()

	code, resp := call(c, env.e, http.MethodGet, "/api/monitoring-records?limit=0", nil)
	c.Assert(code, qt.Equals, http.StatusBadRequest)
	c.Assert(resp.Errors[0].Message, qt.Equals, "limit must be at least 1")

	code, _ = call(c, env.e, http.MethodGet, "/api/monitoring-records?limit=1001", nil)
	c.Assert(code, qt.Equals, http.StatusBadRequest)

	code, resp = call(c, env.e, http.MethodGet, "/api/monitoring-records?monitoringPointId=2&startDate=2025-02-01", nil)
	c.Assert(code, qt.Equals, http.StatusOK)
	c.Assert(*resp.Count, qt.Equals, 0)
}

func TestPointStatsNeedsExistingPoint(t *testing.T) {
	c := qt.New(t)
	env := newRecordEnv()

	code, _ := call(c, env.e, http.MethodGet, "/api/monitoring-records/stats/99", nil)
	c.Assert(code, qt.Equals, http.StatusNotFound)

	code, _ = call(c, env.e, http.MethodGet, "/api/monitoring-records/stats/1?days=400", nil)
	c.Assert(code, qt.Equals, http.StatusBadRequest)

	total := int64(56)
	env.records.stats = model.PointStats{TotalRecords: total}
	code, resp := call(c, env.e, http.MethodGet, "/api/monitoring-records/stats/1", nil)
	c.Assert(code, qt.Equals, http.StatusOK)
	c.Assert(decode[model.PointStats](c, resp.Data).TotalRecords, qt.Equals, total)
}

func TestTimeSeriesWindow(t *testing.T) {
	c := qt.New(t)
	env := newRecordEnv()

	code, resp := call(c, env.e, http.MethodGet, "/api/monitoring-records/timeseries?monitoringPointId=1&parameter=aqi", nil)
	c.Assert(code, qt.Equals, http.StatusOK)
	series := decode[[]model.TimeSeriesPoint](c, resp.Data)
	c.Assert(series[1].RecordedAt.Sub(series[0].RecordedAt), qt.Equals, 7*24*time.Hour)

	code, resp = call(c, env.e, http.MethodGet, "/api/monitoring-records/timeseries?monitoringPointId=1&parameter=aqi&startDate=2025-03-02&endDate=2025-03-01", nil)
	c.Assert(code, qt.Equals, http.StatusBadRequest)
	c.Assert(fieldNames(resp.Errors), qt.DeepEquals, []string{"startDate"})

	code, resp = call(c, env.e, http.MethodGet, "/api/monitoring-records/timeseries?monitoringPointId=1&parameter=notes", nil)
	c.Assert(code, qt.Equals, http.StatusBadRequest)
	c.Assert(fieldNames(resp.Errors), qt.DeepEquals, []string{"parameter"})
}

func TestRecordStoreFailureIsInternal(t *testing.T) {
	c := qt.New(t)
	env := newRecordEnv()
	env.records.err = errDown

	code, resp := call(c, env.e, http.MethodGet, "/api/monitoring-records/stats/dashboard", nil)
	c.Assert(code, qt.Equals, http.StatusInternalServerError)
	c.Assert(resp.Message, qt.Equals, "Internal server error")

	code, _ = call(c, env.e, http.MethodGet, "/api/monitoring-records/7", nil)
	c.Assert(code, qt.Equals, http.StatusNotFound)
}
