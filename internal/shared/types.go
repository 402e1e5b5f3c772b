package shared

// Task types processed by the worker
const (
	TypeCatalogSync = "tvshow:catalog_sync"
)

// Queues
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// CatalogSyncPayload is the payload of TypeCatalogSync
type CatalogSyncPayload struct {
	// Trigger says who asked for the run: "scheduler", "api", "cli"
	Trigger string `json:"trigger"`
}
