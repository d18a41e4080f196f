/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package healthcheck runs squad health check rooms: a registry of rooms
// keyed by short codes, the per-room question state machine, response
// tallies, and a gateway that maps live connections onto rooms.
package healthcheck

import (
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
)

// OwnerSuffix is appended to the owner's display name in the roster.
const OwnerSuffix = " (Owner)"

// State is the lifecycle stage of a room.
type State int

const (
	Lobby State = iota
	InProgress
	Complete
)

func (s State) String() string {
	switch s {
	case Lobby:
		return "lobby"
	case InProgress:
		return "in-progress"
	case Complete:
		return "complete"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Participant is a roster entry. It lives exactly as long as its connection.
type Participant struct {
	ID   string `json:"-"`
	Name string `json:"name"`

	sender Sender
}

// Room is a single game session. All mutations, and the broadcasts they
// trigger, happen under mu.
type Room struct {
	code    string
	ownerID string

	mu           sync.Mutex
	participants []Participant
	rounds       []round
	index        int
	started      bool
	ended        bool
	lastActive   time.Time
}

func newRoom(code, ownerID, ownerName string, owner Sender, questions []Question) *Room {
	rounds := make([]round, len(questions))
	for i, q := range questions {
		rounds[i] = round{question: q}
	}

	return &Room{
		code:    code,
		ownerID: ownerID,
		participants: []Participant{{
			ID:     ownerID,
			Name:   ownerName + OwnerSuffix,
			sender: owner,
		}},
		rounds:     rounds,
		index:      -1,
		lastActive: time.Now(),
	}
}

func (r *Room) Code() string {
	return r.code
}

func (r *Room) OwnerID() string {
	return r.ownerID
}

func (r *Room) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.stateLocked()
}

// Index returns the current question pointer: -1 before start, len(questions)
// once complete.
func (r *Room) Index() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.index
}

func (r *Room) QuestionCount() int {
	return len(r.rounds)
}

func (r *Room) Participants() []Participant {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Participant(nil), r.participants...)
}

func (r *Room) IsEnded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.ended
}

func (r *Room) LastActive() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lastActive
}

func (r *Room) stateLocked() State {
	switch {
	case !r.started:
		return Lobby
	case r.index >= len(r.rounds):
		return Complete
	default:
		return InProgress
	}
}

func (r *Room) touchLocked() {
	r.lastActive = time.Now()
}

func (r *Room) memberLocked(id string) int {
	_, idx, ok := lo.FindIndexOf(r.participants, func(p Participant) bool {
		return p.ID == id
	})
	if !ok {
		return -1
	}
	return idx
}

func (r *Room) namesLocked() []string {
	return lo.Map(r.participants, func(p Participant, _ int) string {
		return p.Name
	})
}

// broadcastLocked sends ev to whoever is in the roster right now.
func (r *Room) broadcastLocked(ev Event) {
	for _, p := range r.participants {
		p.sender.Send(ev)
	}
}

func (r *Room) questionEventLocked() Event {
	return Event{
		Type: EventQuestion,
		Payload: QuestionPayload{
			Question: r.rounds[r.index].question,
			Index:    r.index,
			Total:    len(r.rounds),
		},
	}
}

func (r *Room) resultsLocked() []QuestionResult {
	results := make([]QuestionResult, 0, len(r.rounds))
	for _, rd := range r.rounds {
		// Responses are validated on the way in, so this cannot fail.
		tally, _ := Aggregate(rd.responses)
		results = append(results, QuestionResult{
			Question:  rd.question,
			Responses: tally,
		})
	}
	return results
}

func (r *Room) checkOwnerLocked(requester string) error {
	if r.ended {
		return fmt.Errorf("%w: room %s has ended", ErrInvalidState, r.code)
	}
	if requester != r.ownerID {
		return ErrUnauthorized
	}
	return nil
}

// Join adds a connection to the roster, refreshes everyone's participant
// list, and catches the joiner up on the current question if the game is
// already running.
func (r *Room) Join(id, name string, sender Sender) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ended {
		return fmt.Errorf("%w: room %s has ended", ErrNotFound, r.code)
	}
	if r.memberLocked(id) >= 0 {
		return fmt.Errorf("%w: already in room %s", ErrInvalidState, r.code)
	}

	r.touchLocked()
	r.participants = append(r.participants, Participant{
		ID:     id,
		Name:   name,
		sender: sender,
	})

	r.broadcastLocked(Event{Type: EventNewUser, Payload: r.namesLocked()})
	sender.Send(Event{Type: EventJoined, Payload: r.code})

	if r.stateLocked() == InProgress {
		sender.Send(Event{Type: EventGameStart})
		sender.Send(r.questionEventLocked())
	}

	return nil
}

// Start moves the room out of the lobby and reveals the first question.
func (r *Room) Start(requester string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkOwnerLocked(requester); err != nil {
		return err
	}
	if r.started {
		return fmt.Errorf("%w: room %s already started", ErrInvalidState, r.code)
	}

	r.touchLocked()
	r.started = true
	r.index = 0

	r.broadcastLocked(Event{Type: EventGameStart})

	if len(r.rounds) == 0 {
		roomsCompleted.Inc()
		r.broadcastLocked(Event{Type: EventComplete, Payload: []QuestionResult{}})
		return nil
	}

	r.broadcastLocked(r.questionEventLocked())

	return nil
}

// Advance moves to the next question. Running past the last one completes
// the room and returns the final results, which are also broadcast.
func (r *Room) Advance(requester string) ([]QuestionResult, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkOwnerLocked(requester); err != nil {
		return nil, false, err
	}

	switch r.stateLocked() {
	case Lobby:
		return nil, false, fmt.Errorf("%w: room %s has not started", ErrInvalidState, r.code)
	case Complete:
		return nil, false, fmt.Errorf("%w: room %s is complete", ErrInvalidState, r.code)
	}

	r.touchLocked()
	r.index++

	if r.index < len(r.rounds) {
		r.broadcastLocked(r.questionEventLocked())
		return nil, false, nil
	}

	results := r.resultsLocked()
	roomsCompleted.Inc()

	r.broadcastLocked(Event{Type: EventComplete, Payload: results})

	return results, true, nil
}

// RecordResponse appends an answer to the current question. The same
// connection may answer more than once; the round closes when the number of
// answers equals the roster size minus the owner.
func (r *Room) RecordResponse(id string, c Category) error {
	if !c.valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, string(c))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ended {
		return fmt.Errorf("%w: room %s has ended", ErrInvalidState, r.code)
	}
	if r.memberLocked(id) < 0 {
		return ErrNotInRoom
	}
	if r.stateLocked() != InProgress {
		return fmt.Errorf("%w: no question is active in room %s", ErrInvalidState, r.code)
	}

	r.touchLocked()
	rd := &r.rounds[r.index]
	rd.responses = append(rd.responses, c)
	responsesRecorded.WithLabelValues(string(c)).Inc()

	if len(rd.responses) == len(r.participants)-1 {
		tally, _ := Aggregate(rd.responses)
		r.broadcastLocked(Event{Type: EventRoundResponse, Payload: tally})
	}

	return nil
}

// Tally returns the counts recorded so far for question i.
func (r *Room) Tally(i int) (Tally, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i < 0 || i >= len(r.rounds) {
		return Tally{}, fmt.Errorf("%w: question %d out of range", ErrInvalidState, i)
	}
	return Aggregate(r.rounds[i].responses)
}

// Disconnect drops a connection from the room. The owner leaving ends the
// room; anyone else leaving refreshes the roster for those who remain.
// It reports whether the connection was in the room.
func (r *Room) Disconnect(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.memberLocked(id)
	if idx < 0 {
		return false
	}

	r.touchLocked()
	r.participants = append(r.participants[:idx], r.participants[idx+1:]...)

	switch {
	case id == r.ownerID:
		r.endLocked()
	case !r.ended:
		r.broadcastLocked(Event{Type: EventNewUser, Payload: r.namesLocked()})
	}

	return true
}

// End marks the room finished and tells everyone still attached.
func (r *Room) End() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.endLocked()
}

func (r *Room) endLocked() {
	if r.ended {
		return
	}
	r.ended = true
	r.broadcastLocked(Event{Type: EventGameEnded})
}
