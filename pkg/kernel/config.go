package kernel

import (
	"fmt"
	"time"

	"github.com/poltergeist/mlfq/pkg/logger"
)

// Policy selects how a core picks the next record among runnable ones.
type Policy string

const (
	// PolicyScan walks the table in index order at each level and restarts
	// from HIGH after every dispatch. Low table slots win ties, so it is not
	// fair within a level.
	PolicyScan Policy = "scan"
	// PolicyFIFO keeps one ordered run queue per level under a single lock
	// and dispatches first-in first-out within a level.
	PolicyFIFO Policy = "fifo"
)

// Table and per-record limits.
const (
	DefaultNProc  = 64
	DefaultNCPU   = 3
	NOFILE        = 16
	PageSize      = 4096
	DefaultBoost  = 10
	statusBytes   = 4
	maxSliceTicks = 1<<16 - 1
)

// DefaultSlices are the time-slice lengths for HIGH, MEDIUM and LOW.
var DefaultSlices = [NumLevels]int{4, 8, 16}

// Config sizes the kernel and tunes the feedback queue.
type Config struct {
	NProc         int
	NCPU          int
	Slices        [NumLevels]int
	BoostInterval uint64
	Policy        Policy
	// TickInterval drives Tick from an internal clock when positive.
	// Zero leaves the clock to the caller.
	TickInterval time.Duration
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		NProc:         DefaultNProc,
		NCPU:          DefaultNCPU,
		Slices:        DefaultSlices,
		BoostInterval: DefaultBoost,
		Policy:        PolicyScan,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.NProc <= 0 {
		return fmt.Errorf("%w: nproc must be positive, got %d", ErrInvalidConfig, c.NProc)
	}
	if c.NCPU <= 0 {
		return fmt.Errorf("%w: ncpu must be positive, got %d", ErrInvalidConfig, c.NCPU)
	}
	for lvl, s := range c.Slices {
		if s <= 0 || s > maxSliceTicks {
			return fmt.Errorf("%w: %s slice out of range: %d", ErrInvalidConfig, Level(lvl), s)
		}
	}
	if c.BoostInterval == 0 {
		return fmt.Errorf("%w: boost interval must be positive", ErrInvalidConfig)
	}
	switch c.Policy {
	case PolicyScan, PolicyFIFO:
	default:
		return fmt.Errorf("%w: unknown policy %q", ErrInvalidConfig, c.Policy)
	}
	if c.TickInterval < 0 {
		return fmt.Errorf("%w: negative tick interval", ErrInvalidConfig)
	}
	return nil
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(k *Kernel) {
		k.cfg = cfg
	}
}

// WithLogger sets the kernel logger.
func WithLogger(log logger.Logger) Option {
	return func(k *Kernel) {
		if log != nil {
			k.log = log
		}
	}
}

// WithSwitcher overrides the context switch primitive.
func WithSwitcher(s Switcher) Option {
	return func(k *Kernel) {
		k.switcher = s
	}
}

// WithEventSink delivers lifecycle events to sink.
func WithEventSink(sink EventSink) Option {
	return func(k *Kernel) {
		k.sink = sink
	}
}
