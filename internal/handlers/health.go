package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/temcen/storefront/internal/services"
)

// backendImpact describes what the storefront loses while a backend is down. Critical
// backends leave no way to serve a listing or a session, so losing one makes the
// storefront unhealthy; losing any other only degrades it.
var backendImpact = map[string]struct {
	effect   string
	critical bool
}{
	"postgresql": {effect: "browse falls back to the ranking service"},
	"neo4j":      {effect: "interactions are not written to the graph"},
	"ranking":    {effect: "search and browse are unavailable", critical: true},
	"redis":      {effect: "sessions cannot be loaded or saved", critical: true},
}

type healthResponse struct {
	*services.HealthStatus
	Impact map[string]string `json:"impact,omitempty"`
}

type HealthHandler struct {
	logger        *logrus.Logger
	healthService *services.HealthService
}

func NewHealthHandler(logger *logrus.Logger, healthService *services.HealthService) *HealthHandler {
	return &HealthHandler{
		logger:        logger,
		healthService: healthService,
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	status := h.healthService.CheckHealth(c.Request.Context())
	response := healthResponse{HealthStatus: status}

	for _, name := range status.Degraded {
		if response.Impact == nil {
			response.Impact = make(map[string]string, len(status.Degraded))
		}
		impact, known := backendImpact[name]
		if !known {
			response.Impact[name] = "unavailable"
			continue
		}
		response.Impact[name] = impact.effect
		if impact.critical {
			status.Status = "unhealthy"
		}
	}

	httpStatus := http.StatusOK
	if status.Status == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
		h.logger.WithField("degraded", status.Degraded).Error("Storefront cannot serve shoppers")
	}
	if len(status.Degraded) > 0 {
		c.Header("X-Storefront-Degraded", strings.Join(status.Degraded, ","))
	}

	c.JSON(httpStatus, response)
}
