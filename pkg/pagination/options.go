package pagination

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultSlidingExpiration = 5 * time.Minute
	DefaultRefreshTimeout    = 5 * time.Second
	DefaultBuildTimeout      = 30 * time.Second
)

// Options configures a PageCollection.
type Options struct {
	// MaxPageSize is the number of values per page (S)
	MaxPageSize int
	// SlidingExpiration is reset every time a cached page is read
	SlidingExpiration time.Duration
	// RefreshTimeout bounds a single invalidation call
	RefreshTimeout time.Duration
	// BuildTimeout bounds a shared page build, which outlives a cancelled caller
	BuildTimeout time.Duration
	// Namespace identifies the value type, keys are page:<namespace>:<n>
	Namespace string
	Logger    *zerolog.Logger
}

func (o Options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.MaxPageSize, validation.Required, validation.Min(1)),
		validation.Field(&o.Namespace, validation.Required),
	)
}

func (o Options) withDefaults() Options {
	if o.SlidingExpiration <= 0 {
		o.SlidingExpiration = DefaultSlidingExpiration
	}
	if o.RefreshTimeout <= 0 {
		o.RefreshTimeout = DefaultRefreshTimeout
	}
	if o.BuildTimeout <= 0 {
		o.BuildTimeout = DefaultBuildTimeout
	}
	if o.Logger == nil {
		l := log.Logger
		o.Logger = &l
	}
	return o
}
