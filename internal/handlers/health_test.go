package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestHealthReportsComponentState(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("unreachable") }

	cases := []struct {
		name   string
		checks map[string]HealthCheck
		code   int
	}{
		{"all up", map[string]HealthCheck{"store": up, "cache": up}, http.StatusOK},
		{"cache down", map[string]HealthCheck{"store": up, "cache": down}, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			e.GET("/health", NewHealthHandler(tc.checks).Health)

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			require.Equal(t, tc.code, rec.Code)
		})
	}
}
