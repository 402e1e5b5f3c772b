package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"tvshow-catalog/internal/domains/tvshow/job"
	"tvshow-catalog/internal/infrastructure/queue"
	"tvshow-catalog/internal/shared/response"
)

// Enqueuer is satisfied by *asynq.Client
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// SyncHandler lets operators trigger a catalog sync outside the schedule
type SyncHandler struct {
	queue     Enqueuer
	syncLimit time.Duration
}

func NewSyncHandler(q Enqueuer, syncLimit time.Duration) *SyncHandler {
	return &SyncHandler{queue: q, syncLimit: syncLimit}
}

// Trigger handles POST /v1/admin/sync. The run happens in the worker.
func (h *SyncHandler) Trigger(c *gin.Context) {
	task, err := job.NewCatalogSyncTask("api")
	if err != nil {
		response.ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	info, err := h.queue.Enqueue(task, queue.CatalogSyncOptions(h.syncLimit)...)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		response.ErrorResponse(c, http.StatusConflict, "SYNC_ALREADY_QUEUED", "a catalog sync is already queued")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to enqueue catalog sync")
		response.ErrorResponse(c, http.StatusServiceUnavailable, "QUEUE_UNAVAILABLE", "could not enqueue catalog sync")
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{
		"task_id": info.ID,
		"queue":   info.Queue,
	})
}
