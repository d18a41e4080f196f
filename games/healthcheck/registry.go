/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package healthcheck

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"
	"sync"
	"time"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 4
)

// Registry owns every live room, keyed by code.
type Registry struct {
	mu        sync.RWMutex
	rooms     map[string]*Room
	questions []Question
	newCode   func() string
}

type RegistryOption func(*Registry)

// WithCodeGenerator replaces the random room code source.
func WithCodeGenerator(fn func() string) RegistryOption {
	return func(reg *Registry) {
		reg.newCode = fn
	}
}

func NewRegistry(questions []Question, opts ...RegistryOption) *Registry {
	reg := &Registry{
		rooms:     make(map[string]*Room),
		questions: append([]Question(nil), questions...),
		newCode:   randomCode,
	}
	for _, opt := range opts {
		opt(reg)
	}
	return reg
}

// randomCode draws a room code uniformly from codeAlphabet via crypto/rand.
func randomCode() string {
	limit := big.NewInt(int64(len(codeAlphabet)))

	out := make([]byte, codeLength)
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out[i] = codeAlphabet[n.Int64()]
	}
	return string(out)
}

// CreateRoom picks an unused code, stores a new room under it with the owner
// as its first participant, and returns the code.
func (reg *Registry) CreateRoom(ownerID, ownerName string, owner Sender) string {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	var code string
	for {
		code = reg.newCode()
		if _, exists := reg.rooms[code]; !exists {
			break
		}
	}

	reg.rooms[code] = newRoom(code, ownerID, ownerName, owner, reg.questions)

	roomsCreated.Inc()
	roomsLive.Inc()

	return code
}

// ValidCode reports whether code has the shape of a room code.
func ValidCode(code string) bool {
	if len(code) != codeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(codeAlphabet, rune(code[i])) {
			return false
		}
	}
	return true
}

// Room looks up a code. Ended rooms are reported as missing.
func (reg *Registry) Room(code string) (*Room, bool) {
	reg.mu.RLock()
	room, ok := reg.rooms[code]
	reg.mu.RUnlock()

	if !ok || room.IsEnded() {
		return nil, false
	}
	return room, true
}

// Len counts stored rooms, including ended ones not yet reaped.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	return len(reg.rooms)
}

func (reg *Registry) snapshot() []*Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	rooms := make([]*Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// RemoveConnection detaches a connection from every room it is in. Safe to
// call for connections that never joined anything.
func (reg *Registry) RemoveConnection(id string) []string {
	var touched []string
	for _, room := range reg.snapshot() {
		if room.Disconnect(id) {
			touched = append(touched, room.code)
		}
	}
	return touched
}

// ReapPolicy decides which rooms the reaper removes. A zero duration turns
// that half of the policy off.
type ReapPolicy struct {
	// Ended rooms (owner gone) are removed once idle this long.
	Ended time.Duration
	// Live rooms are ended and removed once idle this long.
	Idle time.Duration
}

func (p ReapPolicy) interval() time.Duration {
	var shortest time.Duration
	for _, d := range []time.Duration{p.Ended, p.Idle} {
		if d > 0 && (shortest == 0 || d < shortest) {
			shortest = d
		}
	}
	return shortest / 2
}

func (p ReapPolicy) stale(room *Room, now time.Time) bool {
	last := room.LastActive()

	if room.IsEnded() {
		return p.Ended > 0 && !last.After(now.Add(-p.Ended))
	}
	return p.Idle > 0 && !last.After(now.Add(-p.Idle))
}

// Reap deletes the rooms policy marks stale, ending live ones first so
// their members hear about it. It returns the number of rooms removed.
func (reg *Registry) Reap(now time.Time, policy ReapPolicy) int {
	reg.mu.Lock()
	var stale []*Room
	for code, room := range reg.rooms {
		if policy.stale(room, now) {
			delete(reg.rooms, code)
			stale = append(stale, room)
		}
	}
	reg.mu.Unlock()

	for _, room := range stale {
		room.End()
	}

	roomsLive.Sub(float64(len(stale)))

	return len(stale)
}

// RunReaper calls Reap every half of the policy's shortest duration until
// ctx is done. It returns at once if the policy is fully disabled.
func (reg *Registry) RunReaper(ctx context.Context, policy ReapPolicy, logf func(format string, args ...any)) {
	every := policy.interval()
	if every <= 0 {
		return
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := reg.Reap(now, policy); n > 0 {
				logf("ROOMS: Reaped %d room(s)", n)
			}
		}
	}
}
