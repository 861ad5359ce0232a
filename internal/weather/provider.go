package weather

import (
	"context"
	"errors"
	"fmt"

	"krishisense/internal/model"
)

// ErrUnavailable is matched by every failure to obtain live weather
var ErrUnavailable = errors.New("weather unavailable")

// Provider fetches current conditions and a daily forecast for a location
type Provider interface {
	Fetch(ctx context.Context, lat, lon float64) (*model.WeatherSnapshot, error)
}

// UnavailableError describes why live weather could not be fetched.
// Status is the upstream HTTP status, or 0 when no response was received.
type UnavailableError struct {
	Status  int
	Message string
	Err     error
}

func (e *UnavailableError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("OpenWeather error %d: %s", e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}
