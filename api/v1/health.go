package v1

import (
	"net/http"

	"github.com/bugpredictor/database"
	"github.com/gin-gonic/gin"
)

// HealthCheck handles the health check endpoint
func HealthCheck(c *gin.Context) {
	code, status, dbStatus := http.StatusOK, "ok", "ok"
	if !databaseReachable(c) {
		code, status, dbStatus = http.StatusServiceUnavailable, "degraded", "unavailable"
	}

	c.JSON(code, gin.H{
		"status":   status,
		"service":  "bugpredictor-api",
		"version":  "1.0.0",
		"database": dbStatus,
	})
}

func databaseReachable(c *gin.Context) bool {
	if database.DB == nil {
		return false
	}
	sqlDB, err := database.DB.DB()
	if err != nil {
		return false
	}
	return sqlDB.PingContext(c.Request.Context()) == nil
}
