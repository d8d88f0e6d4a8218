package memtable

import (
	"github.com/crestdb/crestdb/internal/arena"
	"github.com/crestdb/crestdb/internal/logging"
	"github.com/crestdb/crestdb/internal/rng"
)

// Options configures a SkipList. The zero value is not usable directly;
// fill in Comparator at minimum.
type Options[K any] struct {
	// Comparator is the total order over K (required).
	Comparator Comparator[K]

	// MaxHeight is the structural cap on levels. Defaults to
	// DefaultMaxHeight if zero.
	MaxHeight int

	// Branching is the inverse promotion probability B. Defaults to
	// DefaultBranching if zero.
	Branching int

	// Arena backs node size accounting (spec.md C1). A private Arena is
	// created if nil.
	Arena *arena.Arena

	// Logger receives Debugf/Warnf diagnostics (height raises, arena
	// accounting failures). Accelerator searches log nothing. Defaults to
	// logging.Discard.
	Logger logging.Logger

	// RNG is the injected per-writer uniform source the height sampler
	// draws from. A pooled source (rng.Get()) is borrowed if nil, and
	// returned to the pool by SkipList.Close; a caller-supplied Source
	// is left for the caller to manage.
	RNG rng.Source
}

func (o Options[K]) withDefaults() (Options[K], error) {
	if o.Comparator == nil {
		return o, newListError("NewSkipList", "Comparator must not be nil")
	}
	if o.MaxHeight == 0 {
		o.MaxHeight = DefaultMaxHeight
	}
	if o.MaxHeight < 1 {
		return o, newListError("NewSkipList", "MaxHeight must be positive, got %d", o.MaxHeight)
	}
	if o.Branching == 0 {
		o.Branching = DefaultBranching
	}
	if o.Branching < 1 {
		return o, newListError("NewSkipList", "Branching must be positive, got %d", o.Branching)
	}
	if o.Arena == nil {
		o.Arena = arena.New()
	}
	if o.Logger == nil {
		o.Logger = logging.Discard
	}
	if o.RNG == nil {
		o.RNG = rng.Get()
	}
	return o, nil
}
