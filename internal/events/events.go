// Package events defines the domain events published by the auth core and
// a small synchronous dispatcher. Subscriptions are registered explicitly
// at wiring time, never as a side effect of constructing a service.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// AccountCreated is published once per new account, whether it was created
// by registration or by a first Google sign-in.
type AccountCreated struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Handler consumes an AccountCreated event.
type Handler func(ctx context.Context, ev AccountCreated) error

// Dispatcher fans events out to registered handlers in subscription order.
type Dispatcher struct {
	handlers []Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

func (d *Dispatcher) Subscribe(h Handler) {
	d.handlers = append(d.handlers, h)
}

// PublishAccountCreated invokes every handler and returns the joined
// errors. Callers decide whether a handler failure aborts their flow; the
// auth services log and continue.
func (d *Dispatcher) PublishAccountCreated(ctx context.Context, ev AccountCreated) error {
	var errs []error
	for _, h := range d.handlers {
		if err := h(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
