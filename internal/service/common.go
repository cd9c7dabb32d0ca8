package service

import (
	"fmt"
	"time"

	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/ws"
)

// Actor identifies the staff member performing an operation.
type Actor struct {
	ID    string
	Name  string
	Email string
}

func (a Actor) wsData() map[string]any {
	return map[string]any{"id": a.ID, "name": a.Name, "email": a.Email}
}

// Publisher receives realtime events. *ws.Hub implements it.
type Publisher interface {
	Publish(event ws.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(ws.Event) {}

func publisherOrNop(p Publisher) Publisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

// Clock returns the current time. Services take one so tests can pin "today".
type Clock func() time.Time

func clockOrNow(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

// truncateDay drops any time of day from an already normalized day value.
func truncateDay(t time.Time) time.Time {
	return model.Day(t, nil)
}

// resolveDay parses an optional YYYY-MM-DD string, defaulting to today and refusing future days.
func resolveDay(value string, today time.Time) (time.Time, error) {
	if value == "" {
		return today, nil
	}
	day, err := model.ParseDay(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	if day.After(today) {
		return time.Time{}, ErrFutureDate
	}
	return day, nil
}
