package main

import (
	"github.com/hibiken/asynq"

	"tvshow-catalog/internal/domains/tvshow/job"
	"tvshow-catalog/internal/shared"
	"tvshow-catalog/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	catalogSync *job.CatalogSyncHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		catalogSync: job.NewCatalogSyncHandler(c.SyncManager),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeCatalogSync, h.catalogSync.ProcessTask)
}
