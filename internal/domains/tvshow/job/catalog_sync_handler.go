package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"tvshow-catalog/internal/domains/tvshow/tvsync"
	"tvshow-catalog/internal/shared"
)

// Syncer runs one catalog sync
type Syncer interface {
	Sync(ctx context.Context) (tvsync.Result, error)
}

// CatalogSyncHandler imports new shows from the upstream catalog
type CatalogSyncHandler struct {
	syncer Syncer
}

func NewCatalogSyncHandler(syncer Syncer) *CatalogSyncHandler {
	return &CatalogSyncHandler{syncer: syncer}
}

// NewCatalogSyncTask builds the task enqueued by the scheduler and the API
func NewCatalogSyncTask(trigger string) (*asynq.Task, error) {
	payload, err := json.Marshal(shared.CatalogSyncPayload{Trigger: trigger})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(shared.TypeCatalogSync, payload), nil
}

func (h *CatalogSyncHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.CatalogSyncPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			log.Error().Err(err).Msg("Failed to unmarshal CatalogSync payload")
			// a malformed payload will never succeed
			return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	log.Info().Str("trigger", payload.Trigger).Msg("Running catalog sync")

	result, err := h.syncer.Sync(ctx)
	if err != nil {
		log.Error().Err(err).Str("trigger", payload.Trigger).Msg("Catalog sync failed")

		if errors.Is(err, tvsync.ErrSyncStateMismatch) {
			return fmt.Errorf("catalog sync: %v: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("catalog sync: %w", err)
	}

	log.Info().
		Str("trigger", payload.Trigger).
		Int64("shows_added", result.ShowsAdded).
		Int("fetched", result.Fetched).
		Msg("Catalog sync task completed")

	return nil
}
