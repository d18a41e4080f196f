package healthcheck

import (
	"sync"
)

type fakeConn struct {
	id string

	mu     sync.Mutex
	events []Event
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string {
	return c.id
}

func (c *fakeConn) Send(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.events = append(c.events, ev)
}

func (c *fakeConn) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, 0, len(c.events))
	for _, ev := range c.events {
		out = append(out, ev.Type)
	}
	return out
}

func (c *fakeConn) count(typ string) int {
	n := 0
	for _, t := range c.types() {
		if t == typ {
			n++
		}
	}
	return n
}

func (c *fakeConn) last(typ string) (Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.events) - 1; i >= 0; i-- {
		if c.events[i].Type == typ {
			return c.events[i], true
		}
	}
	return Event{}, false
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.events = nil
}

func fixedCode(code string) RegistryOption {
	return WithCodeGenerator(func() string { return code })
}

// sequentialCodes hands out codes in order, one per room.
func sequentialCodes(codes ...string) RegistryOption {
	return WithCodeGenerator(func() string {
		c := codes[0]
		codes = codes[1:]
		return c
	})
}

func threeQuestions() []Question {
	return []Question{
		{Title: "One", Green: "g1", Red: "r1"},
		{Title: "Two", Green: "g2", Red: "r2"},
		{Title: "Three", Green: "g3", Red: "r3"},
	}
}
