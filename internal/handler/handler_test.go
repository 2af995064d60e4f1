package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/envirowatch/internal/middleware"
	"github.com/iliyamo/envirowatch/internal/model"
)

// apiResp is the envelope every endpoint replies with.
type apiResp struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Errors  []FieldError    `json:"errors"`
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewRequestValidator()
	return e
}

// as stands in for JWTAuth on test routes.
func as(uid uint64, role model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.ContextUserID, uid)
			c.Set(middleware.ContextRole, string(role))
			return next(c)
		}
	}
}

// call sends body (a string is sent as is, anything else as JSON) and
// decodes the envelope.
func call(c *qt.C, e *echo.Echo, method, target string, body any) (int, apiResp) {
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		c.Assert(err, qt.IsNil)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var out apiResp
	c.Assert(json.Unmarshal(rec.Body.Bytes(), &out), qt.IsNil, qt.Commentf("body: %s", rec.Body.String()))
	return rec.Code, out
}

func decode[T any](c *qt.C, raw json.RawMessage) T {
	var v T
	c.Assert(json.Unmarshal(raw, &v), qt.IsNil, qt.Commentf("data: %s", raw))
	return v
}

func itoa(id uint64) string { return strconv.FormatUint(id, 10) }

func fieldNames(errs []FieldError) []string {
	out := make([]string, len(errs))
	for i, f := range errs {
		out[i] = f.Field
	}
	return out
}

func TestValidatorMessages(t *testing.T) {
	c := qt.New(t)
	v := NewRequestValidator()

	err := v.Validate(&registerReq{Email: "nope", Password: "abc"})
	var ve *ValidationError
	c.Assert(err, qt.ErrorAs, &ve)
	c.Assert(ve.Fields, qt.DeepEquals, []FieldError{
		{Field: "email", Message: "email must be a valid email"},
		{Field: "password", Message: "password must be at least 6 characters"},
		{Field: "fullName", Message: "fullName is required"},
	})

	err = v.Validate(&listRecordsReq{StartDate: "yesterday"})
	c.Assert(err, qt.ErrorMatches, "startDate must be a valid ISO 8601 date")
	c.Assert(v.Validate(&listRecordsReq{StartDate: "2025-03-01", EndDate: "2025-03-02T10:00:00Z"}), qt.IsNil)
}

func TestParseTimestamp(t *testing.T) {
	c := qt.New(t)
	ts, err := parseTimestamp("2025-03-01T10:00:00+08:00")
	c.Assert(err, qt.IsNil)
	c.Assert(ts.Hour(), qt.Equals, 2)
	c.Assert(ts.Location().String(), qt.Equals, "UTC")

	_, err = parseTimestamp("01/03/2025")
	c.Assert(err, qt.IsNotNil)
}
