package reservations

import "time"

const (
	DefaultMaxNights     = 3
	DefaultHorizonMonths = 1
	DefaultMaxWindowDays = 366
)

// Policy holds the booking rules checked before any store call.
type Policy struct {
	// MaxNights caps the length of a single reservation.
	MaxNights int
	// HorizonMonths is how far ahead of today a reservation may start.
	HorizonMonths int
	// MaxWindowDays caps an availability query.
	MaxWindowDays int
}

func DefaultPolicy() Policy {
	return Policy{
		MaxNights:     DefaultMaxNights,
		HorizonMonths: DefaultHorizonMonths,
		MaxWindowDays: DefaultMaxWindowDays,
	}
}

func (p Policy) withDefaults() Policy {
	if p.MaxNights <= 0 {
		p.MaxNights = DefaultMaxNights
	}
	if p.HorizonMonths <= 0 {
		p.HorizonMonths = DefaultHorizonMonths
	}
	if p.MaxWindowDays <= 0 {
		p.MaxWindowDays = DefaultMaxWindowDays
	}
	return p
}

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}
