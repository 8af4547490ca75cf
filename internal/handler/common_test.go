package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking-engine/internal/domain"
)

func TestIndexToRowLabel(t *testing.T) {
	cases := map[int]string{-1: "", 0: "A", 1: "B", 25: "Z", 26: "AA", 27: "AB", 51: "AZ", 52: "BA", 701: "ZZ", 702: "AAA"}
	for in, want := range cases {
		assert.Equal(t, want, indexToRowLabel(in), "index %d", in)
	}
	assert.Equal(t, "C12", seatLabel(3, 12))
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		body   string
	}{
		{domain.NotFound("ticket %d not found", 7), http.StatusNotFound, `{"error":"not_found","message":"ticket 7 not found"}`},
		{domain.InvalidState("sold"), http.StatusConflict, `{"error":"invalid_state","message":"sold"}`},
		{domain.SchedulingConflict("busy"), http.StatusConflict, `{"error":"scheduling_conflict","message":"busy"}`},
		{domain.Forbidden("nope"), http.StatusForbidden, `{"error":"forbidden","message":"nope"}`},
		{domain.Validation("bad"), http.StatusBadRequest, `{"error":"validation_error","message":"bad"}`},
		{errUnauthenticated, http.StatusUnauthorized, `{"error":"unauthorized","message":"authentication required"}`},
		{errors.New("dial tcp: connection refused"), http.StatusInternalServerError, `{"error":"internal_error","message":"internal server error"}`},
	}
	e := echo.New()
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		assert.NoError(t, writeError(c, zap.NewNop(), tt.err))
		assert.Equal(t, tt.status, rec.Code)
		assert.JSONEq(t, tt.body, rec.Body.String())
	}
}

type failingPinger struct{ err error }

func (p failingPinger) PingContext(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/healthz", nil), rec)
	assert.NoError(t, Health(failingPinger{})(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/healthz", nil), rec)
	assert.NoError(t, Health(failingPinger{err: errors.New("down")})(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
