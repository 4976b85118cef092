// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package payx

// A Handler is invoked when a call lifecycle event occurs. Handlers
// are registered in a HandlerGroup.
//
// Handlers are invoked synchronously from the goroutine running the
// call, so a slow handler slows the call down.
type Handler interface {
	Handle(evt Event, c *Call)
}

// HandlerFunc is an adapter allowing an ordinary function to be used
// as a Handler.
type HandlerFunc func(Event, *Call)

// Handle invokes f(evt, c).
func (f HandlerFunc) Handle(evt Event, c *Call) {
	f(evt, c)
}

// A HandlerGroup associates handlers with the call lifecycle events
// they react to. The zero value is an empty group, ready to use.
//
// A HandlerGroup is not safe for concurrent use. Register all handlers
// before sharing the Client that owns the group between goroutines.
type HandlerGroup struct {
	handlers [][]Handler
}

// PushBack appends a handler for the given event. Handlers for the
// same event run in registration order.
//
// PushBack panics if h is nil or evt is not a valid event.
func (g *HandlerGroup) PushBack(evt Event, h Handler) {
	if h == nil {
		panic("payx: nil handler")
	}
	if g.handlers == nil {
		g.handlers = make([][]Handler, numEvents)
	}
	g.handlers[evt] = append(g.handlers[evt], h)
}

func (g *HandlerGroup) run(evt Event, c *Call) {
	if g == nil || g.handlers == nil {
		return
	}
	for _, h := range g.handlers[evt] {
		h.Handle(evt, c)
	}
}
