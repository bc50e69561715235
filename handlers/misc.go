package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dacchu2004/lawGuide/datatypes"
)

// HealthCheck serves GET /health.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, datatypes.HealthResponse{
		Status:  "ok",
		Message: "LawGuide AI service is running",
	})
}
