// Package location is the device-location boundary: a Provider yields coordinates or a typed failure.
package location

import (
	"context"
	"errors"
	"fmt"

	"github.com/kjstillabower/krishivani/internal/models"
	"github.com/kjstillabower/krishivani/internal/validation"
)

var (
	// ErrPermissionDenied is returned when the caller is not allowed to read the location.
	ErrPermissionDenied = errors.New("location permission denied")
	// ErrUnavailable is returned when no location fix can be produced.
	ErrUnavailable = errors.New("location unavailable")
	// ErrTimeout is returned when the fix did not arrive before the deadline.
	ErrTimeout = errors.New("location timeout")
)

// Provider returns the current coordinates.
type Provider interface {
	CurrentLocation(ctx context.Context) (models.Coordinates, error)
}

// StaticProvider always reports the same coordinates. It stands in for a device fix on the server.
type StaticProvider struct {
	coords models.Coordinates
	err    error
}

// NewStaticProvider returns a provider for coords. Out-of-range coordinates make every call fail
// with ErrUnavailable.
func NewStaticProvider(coords models.Coordinates) *StaticProvider {
	p := &StaticProvider{coords: coords}
	if err := validation.ValidateCoordinates(coords); err != nil {
		p.err = fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return p
}

func (p *StaticProvider) CurrentLocation(ctx context.Context) (models.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return models.Coordinates{}, contextError(err)
	}
	if p.err != nil {
		return models.Coordinates{}, p.err
	}
	return p.coords, nil
}

// FailingProvider always fails with Err. Used to disable location lookup, e.g. with
// ErrPermissionDenied when callers must pass explicit coordinates.
type FailingProvider struct {
	Err error
}

func (p FailingProvider) CurrentLocation(ctx context.Context) (models.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return models.Coordinates{}, contextError(err)
	}
	if p.Err == nil {
		return models.Coordinates{}, ErrUnavailable
	}
	return models.Coordinates{}, p.Err
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// Resolve returns explicit coordinates when given and otherwise asks p.
func Resolve(ctx context.Context, p Provider, explicit models.Coordinates, ok bool) (models.Coordinates, error) {
	if ok {
		return explicit, nil
	}
	c, err := p.CurrentLocation(ctx)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("current location: %w", err)
	}
	return c, nil
}
