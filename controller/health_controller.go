package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (ctl *Controller) Health(c *gin.Context) {
	if err := ctl.ping(c.Request.Context()); err != nil {
		ctl.log.Warn().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
