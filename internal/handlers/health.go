package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/proserv/engagement-api/internal/database"
)

// Health reports liveness and database reachability.
func Health(c *gin.Context) {
	sqlDB, err := database.GetDB().DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
