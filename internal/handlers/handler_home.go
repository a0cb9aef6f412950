package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// registerHomeRoutes sets up the root and health check routes.
func registerHomeRoutes(r *gin.Engine) {
	r.GET("/", home)
	r.GET("/health", health)
}

// home godoc
// @Summary Service banner
// @Description Returns the service name
// @Tags home
// @Produce plain
// @Success 200 {string} string
// @Router / [get]
func home(c *gin.Context) {
	c.String(http.StatusOK, "family finance backend")
}

// health godoc
// @Summary Health check
// @Description Liveness probe
// @Tags home
// @Produce plain
// @Success 200 {string} string "OK"
// @Router /health [get]
func health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
