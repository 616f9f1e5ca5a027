package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthResponse is returned by the liveness probe.
type HealthResponse struct {
	Status  string `json:"status" example:"healthy"`
	Version string `json:"version" example:"1.0.0"`
}

// RootResponse points clients at the docs and health endpoints.
type RootResponse struct {
	Message string `json:"message"`
	Docs    string `json:"docs"`
	Health  string `json:"health"`
}

// Health godoc
// @ID       health
// @Summary  Liveness probe
// @Tags     System
// @Produce  json
// @Success  200  {object}  handlers.HealthResponse
// @Router   /health [get]
func (h *Handlers) Health(c *gin.Context) {
	ok(c, http.StatusOK, HealthResponse{Status: "healthy", Version: h.version})
}

// Root godoc
// @ID       root
// @Summary  API index
// @Tags     System
// @Produce  json
// @Success  200  {object}  handlers.RootResponse
// @Router   / [get]
func (h *Handlers) Root(c *gin.Context) {
	ok(c, http.StatusOK, RootResponse{
		Message: "Mental Health AI API",
		Docs:    "/swagger/index.html",
		Health:  "/health",
	})
}
