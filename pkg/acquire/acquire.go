// Package acquire obtains the agent framework's source tree. Strategies are
// tried in priority order: a git clone when the tool is present, then a zip
// archive download. A strategy whose tool is missing is skipped, not failed.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Method identifies how a target was populated.
type Method string

const (
	// MethodClone is a git clone or pull.
	MethodClone Method = "git-clone"

	// MethodArchive is a zip archive download and extraction.
	MethodArchive Method = "archive-download"

	// MethodExisting means a populated target was kept as-is because no
	// strategy could refresh it.
	MethodExisting Method = "existing"
)

// ErrRefreshUnsupported is returned by strategies that cannot update a
// target that already holds the source tree.
var ErrRefreshUnsupported = errors.New("refresh over a populated target is not supported")

// Strategy is one way of obtaining the framework source.
type Strategy interface {
	// Method identifies the strategy.
	Method() Method

	// Available reports whether the strategy's host tooling is present.
	// False skips the strategy without recording a failure.
	Available(ctx context.Context) bool

	// Fetch populates an absent or empty target.
	Fetch(ctx context.Context, target string) error

	// Refresh re-syncs a target that already holds the source tree.
	// Returns ErrRefreshUnsupported when the strategy cannot do this.
	Refresh(ctx context.Context, target string) error
}

// Attempt records the result of one strategy attempt for the failure report.
type Attempt struct {
	Method Method
	Err    error
}

// FailedError carries every attempt's cause when acquisition fails.
type FailedError struct {
	Attempts []Attempt
}

// Error implements the error interface.
func (e *FailedError) Error() string {
	if len(e.Attempts) == 0 {
		return "acquisition failed: no strategy was available"
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Method, a.Err))
	}
	return "acquisition failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes the attempt causes to errors.Is/As.
func (e *FailedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}

// Acquirer runs strategies in priority order.
type Acquirer struct {
	strategies []Strategy
}

// NewAcquirer creates an acquirer trying the given strategies in order.
func NewAcquirer(strategies ...Strategy) *Acquirer {
	return &Acquirer{strategies: strategies}
}

// Acquire populates the target. For a populated target it refreshes in place
// with the first strategy that supports it; a populated target no strategy
// can refresh is kept untouched and reported as MethodExisting. For a fresh
// target every available strategy is tried until one succeeds; if all
// available strategies fail, the returned error carries each attempt's cause.
func (a *Acquirer) Acquire(ctx context.Context, target string, populated bool) (Method, error) {
	if populated {
		return a.refresh(ctx, target)
	}
	return a.fetch(ctx, target)
}

func (a *Acquirer) fetch(ctx context.Context, target string) (Method, error) {
	var attempts []Attempt

	for _, s := range a.strategies {
		if !s.Available(ctx) {
			log.Debug().
				Str("method", string(s.Method())).
				Msg("Acquisition strategy unavailable, trying next")
			continue
		}

		log.Info().
			Str("method", string(s.Method())).
			Str("target", target).
			Msg("Acquiring framework source")

		if err := s.Fetch(ctx, target); err != nil {
			log.Warn().
				Err(err).
				Str("method", string(s.Method())).
				Msg("Acquisition attempt failed, trying next")
			attempts = append(attempts, Attempt{Method: s.Method(), Err: err})
			continue
		}
		return s.Method(), nil
	}

	return "", &FailedError{Attempts: attempts}
}

func (a *Acquirer) refresh(ctx context.Context, target string) (Method, error) {
	for _, s := range a.strategies {
		if !s.Available(ctx) {
			continue
		}

		err := s.Refresh(ctx, target)
		if errors.Is(err, ErrRefreshUnsupported) {
			continue
		}
		if err != nil {
			// A populated target stays usable even when the refresh
			// fails, so this is not an acquisition failure.
			log.Warn().
				Err(err).
				Str("method", string(s.Method())).
				Msg("Refresh failed, keeping existing source tree")
			return MethodExisting, nil
		}

		log.Info().
			Str("method", string(s.Method())).
			Str("target", target).
			Msg("Refreshed existing framework source")
		return s.Method(), nil
	}

	log.Info().
		Str("target", target).
		Msg("No strategy can refresh the existing install, keeping it")
	return MethodExisting, nil
}
