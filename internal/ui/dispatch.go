// Package ui holds the per-session presentation state of the booking front
// end.  Input arrives as Events and is routed through an explicit dispatch
// table; the resulting state is rendered into a View that any front end can
// draw.
package ui

import (
	"context"
	"errors"
	"strings"
)

// EventType is the kind of user input.
type EventType string

const (
	Click   EventType = "click"
	Input   EventType = "input"
	Change  EventType = "change"
	KeyDown EventType = "keydown"
)

// ErrUnhandledEvent is returned when no table entry matches an event.
var ErrUnhandledEvent = errors.New("unhandled event")

// Event is one piece of user input.  Target names the element the input
// happened on, using "#id" or ".class" notation.  ID carries a show id,
// Seat a seat label, Value the text of an input or select and Key the
// pressed key.
type Event struct {
	Type   EventType `json:"type"`
	Target string    `json:"target,omitempty"`
	ID     string    `json:"id,omitempty"`
	Seat   string    `json:"seat,omitempty"`
	Value  string    `json:"value,omitempty"`
	Key    string    `json:"key,omitempty"`
}

// Predicate decides whether a table entry applies to an event.
type Predicate func(Event) bool

// HandlerFunc reacts to an event.
type HandlerFunc func(ctx context.Context, ev Event) error

// OnTarget matches events whose Target equals selector.
func OnTarget(selector string) Predicate {
	return func(ev Event) bool { return strings.EqualFold(ev.Target, selector) }
}

// OnKey matches keyboard events for key.
func OnKey(key string) Predicate {
	return func(ev Event) bool { return ev.Key == key }
}

// Both matches when a and b match.
func Both(a, b Predicate) Predicate {
	return func(ev Event) bool { return a(ev) && b(ev) }
}

type route struct {
	typ    EventType
	match  Predicate
	handle HandlerFunc
}

// Table maps (event type, predicate) pairs to handlers.  Entries are tried
// in registration order and the first match wins.
type Table struct {
	routes []route
}

// Handle registers h for events of type typ accepted by match.  A nil
// predicate accepts every event of that type.
func (t *Table) Handle(typ EventType, match Predicate, h HandlerFunc) {
	if match == nil {
		match = func(Event) bool { return true }
	}
	t.routes = append(t.routes, route{typ: typ, match: match, handle: h})
}

// Dispatch runs the first matching handler.
func (t *Table) Dispatch(ctx context.Context, ev Event) error {
	for _, r := range t.routes {
		if r.typ == ev.Type && r.match(ev) {
			return r.handle(ctx, ev)
		}
	}
	return ErrUnhandledEvent
}
