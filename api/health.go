package api

import (
	"context"
	"net/http"
	"time"
	
	"github.com/gin-gonic/gin"
	"github.com/katatrina/gundam-notification/internal/worker"
	"github.com/rs/zerolog/log"
)

type healthResponse struct {
	Status       string `json:"status"`
	Database     string `json:"database"`
	PendingTasks *int   `json:"pending_tasks,omitempty"`
}

//	@Summary		Health check
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	healthResponse
//	@Failure		503	{object}	healthResponse
//	@Router			/healthz [get]
func (server *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	
	resp := healthResponse{Status: "ok", Database: "ok"}
	
	if err := server.dbStore.Ping(ctx); err != nil {
		log.Error().Err(err).Msg("health check: database unreachable")
		resp.Status = "unavailable"
		resp.Database = err.Error()
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	
	// Hàng đợi chỉ mang tính tham khảo, không ảnh hưởng trạng thái
	if server.taskInspector != nil {
		pending, err := server.taskInspector.PendingTasks(ctx, worker.QueueDefault)
		if err != nil {
			log.Warn().Err(err).Msg("health check: failed to inspect task queue")
		} else {
			resp.PendingTasks = &pending
		}
	}
	
	c.JSON(http.StatusOK, resp)
}
