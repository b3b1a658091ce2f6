// Package storage provides storage abstractions for the clock.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwulff/pinclock-go/internal/domain"
)

// Store is the interface for persistent storage.
type Store interface {
	// Animation catalog
	SaveCatalog(ctx context.Context, buildTag string, anis []AnimationRecord) error
	GetCatalog(ctx context.Context) (*Catalog, error)
	GetAnimation(ctx context.Context, index int) (*AnimationRecord, error)

	// Playback log
	RecordPlayback(ctx context.Context, p *Playback) error
	RecentPlaybacks(ctx context.Context, limit int) ([]*Playback, error)

	// Display statistics
	RecordStats(ctx context.Context, s *Stats) error
	QueryStats(ctx context.Context, since, until time.Time) ([]Stats, error)
	DeleteOldStats(ctx context.Context, before time.Time) error

	// Frame cache
	CacheFrame(ctx context.Context, frame *CachedFrame) error
	GetCachedFrame(ctx context.Context) (*CachedFrame, error)

	// Configuration overrides
	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
	DeleteConfig(ctx context.Context, key string) error

	// Lifecycle
	Close() error
}

// AnimationRecord indexes one entry of the animation container.
type AnimationRecord struct {
	Index    int
	Name     string
	ID       int
	Width    int
	Height   int
	Frames   int
	Steps    int
	Duration time.Duration
}

// Catalog is the indexed content of one animation container build.
type Catalog struct {
	BuildTag   string
	IndexedAt  time.Time
	Animations []AnimationRecord
}

// Playback is one played animation.
type Playback struct {
	ID             string
	AnimationIndex int
	Name           string
	StartedAt      time.Time
	Duration       time.Duration
}

// NewPlayback creates a playback record starting now.
func NewPlayback(index int, name string) *Playback {
	return &Playback{
		ID:             uuid.NewString(),
		AnimationIndex: index,
		Name:           name,
		StartedAt:      time.Now(),
	}
}

// Stats is a periodic sample of the display pipeline.
type Stats struct {
	At            time.Time
	FPS           float64
	Frames        uint64
	StartTimeouts uint64
	WaitTimeouts  uint64
	Brightness    int
}

// CachedFrame is the last composited frame.
type CachedFrame struct {
	Frame       *domain.Frame
	GeneratedAt time.Time
}

// ErrNotFound is returned when a record is not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e ErrNotFound) Error() string {
	return e.Resource + " not found: " + e.ID
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	_, ok := err.(ErrNotFound)
	return ok
}
