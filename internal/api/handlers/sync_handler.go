// server/internal/api/handlers/sync_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sppg-kitchen-api-server/internal/remotesync"
)

type SyncHandler struct {
	Syncer *remotesync.Syncer
}

func (h *SyncHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.Syncer.Status())
}

// Flush pushes the queued remote writes now. Failed writes stay queued.
func (h *SyncHandler) Flush(c *gin.Context) {
	if err := h.Syncer.Flush(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "status": h.Syncer.Status()})
		return
	}
	c.JSON(http.StatusOK, h.Syncer.Status())
}
