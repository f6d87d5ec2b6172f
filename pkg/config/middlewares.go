package config

import (
	"net/http"

	"github.com/labstack/echo/v4/middleware"
)

// CORSConfig allows the gateway and frontend origins to call the service with credentials.
func (c *Config) CORSConfig() middleware.CORSConfig {
	return middleware.CORSConfig{
		AllowOrigins:     c.CORSOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"X-Requested-With", "Content-Type", "Authorization", "X-User-Id"},
		MaxAge:           86400,
	}
}
