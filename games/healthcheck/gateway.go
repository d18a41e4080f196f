/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package healthcheck

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Inbound command types.
const (
	CommandCreateRoom = "create-room"
	CommandJoinRoom   = "join-room"
	CommandStartGame  = "start-game"
	CommandNextRound  = "next-round"
	CommandResponse   = "response"
)

// Command is a single message received from a connection.
type Command struct {
	Type   string `json:"type"`
	Name   string `json:"name,omitempty"`
	Room   string `json:"room,omitempty"`
	Colour string `json:"colour,omitempty"`
}

// Conn is one live client connection.
type Conn interface {
	Sender
	ID() string
}

type Role int

const (
	RoleNone Role = iota
	RoleOwner
	RoleParticipant
)

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleParticipant:
		return "participant"
	}
	return "none"
}

// Session is what the gateway knows about a connection.
type Session struct {
	Name string
	Code string
	Role Role
}

// Gateway translates connection commands into room operations.
type Gateway struct {
	registry *Registry
	validate *validator.Validate
	logf     func(format string, args ...any)

	mu       sync.Mutex
	sessions map[string]Session
}

func NewGateway(registry *Registry, logf func(format string, args ...any)) *Gateway {
	if logf == nil {
		logf = func(string, ...any) {}
	}

	return &Gateway{
		registry: registry,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logf:     logf,
		sessions: make(map[string]Session),
	}
}

// Session returns the state tracked for a connection ID.
func (g *Gateway) Session(id string) (Session, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.sessions[id]
	return s, ok
}

func (g *Gateway) setSession(id string, s Session) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.sessions[id] = s
}

// Handle runs one command on behalf of conn. Rejections are reported to conn
// and returned; they never affect other connections.
func (g *Gateway) Handle(conn Conn, cmd Command) error {
	err := g.dispatch(conn, cmd)
	if err == nil {
		return nil
	}

	code := errorCode(err)
	commandsRejected.WithLabelValues(code).Inc()
	g.logf("ROOMS: Rejected %q from %s: %v", cmd.Type, conn.ID(), err)

	if cmd.Type == CommandJoinRoom && errors.Is(err, ErrNotFound) {
		joinAttempts.WithLabelValues("not-found").Inc()
		conn.Send(Event{Type: EventNotFound})
		return err
	}

	conn.Send(Event{
		Type: EventError,
		Payload: ErrorPayload{
			Code:    code,
			Message: err.Error(),
		},
	})

	return err
}

func (g *Gateway) dispatch(conn Conn, cmd Command) error {
	switch cmd.Type {
	case CommandCreateRoom:
		return g.create(conn, cmd)
	case CommandJoinRoom:
		return g.join(conn, cmd)
	case CommandStartGame:
		return g.start(conn, cmd)
	case CommandNextRound:
		return g.next(conn, cmd)
	case CommandResponse:
		return g.respond(conn, cmd)
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidCommand, cmd.Type)
	}
}

func (g *Gateway) checkName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := g.validate.Var(name, "required,max=32"); err != nil {
		return "", fmt.Errorf("%w: display name must be 1-32 characters", ErrInvalidCommand)
	}
	return name, nil
}

func (g *Gateway) checkCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := g.validate.Var(code, "required,len=4,alphanum"); err != nil {
		return "", fmt.Errorf("%w: room code must be 4 letters or digits", ErrInvalidCommand)
	}
	return code, nil
}

// releaseEnded frees a connection whose room has ended or been reaped so it
// can create or join another. A connection in a live room stays put.
func (g *Gateway) releaseEnded(id string) error {
	s, ok := g.Session(id)
	if !ok || s.Code == "" {
		return nil
	}

	if _, live := g.registry.Room(s.Code); live {
		return fmt.Errorf("%w: already in room %s", ErrInvalidState, s.Code)
	}

	g.setSession(id, Session{Name: s.Name})

	return nil
}

func (g *Gateway) create(conn Conn, cmd Command) error {
	name, err := g.checkName(cmd.Name)
	if err != nil {
		return err
	}

	if err := g.releaseEnded(conn.ID()); err != nil {
		return err
	}

	code := g.registry.CreateRoom(conn.ID(), name, conn)
	g.setSession(conn.ID(), Session{Name: name, Code: code, Role: RoleOwner})

	conn.Send(Event{Type: EventRoomID, Payload: code})

	g.logf("ROOMS: %q created room %s", name, code)

	return nil
}

func (g *Gateway) join(conn Conn, cmd Command) error {
	name, err := g.checkName(cmd.Name)
	if err != nil {
		return err
	}

	code, err := g.checkCode(cmd.Room)
	if err != nil {
		// A malformed code cannot name a room.
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	if err := g.releaseEnded(conn.ID()); err != nil {
		return err
	}

	room, ok := g.registry.Room(code)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, code)
	}

	g.setSession(conn.ID(), Session{Name: name, Code: code, Role: RoleParticipant})

	if err := room.Join(conn.ID(), name, conn); err != nil {
		g.setSession(conn.ID(), Session{Name: name})
		return err
	}

	joinAttempts.WithLabelValues("joined").Inc()
	g.logf("ROOMS: %q joined room %s", name, code)

	return nil
}

// roomFor resolves the room a connection is attached to. A code supplied in
// the command must match it.
func (g *Gateway) roomFor(conn Conn, cmd Command) (*Room, error) {
	s, ok := g.Session(conn.ID())
	if !ok || s.Code == "" {
		return nil, ErrNotInRoom
	}

	if cmd.Room != "" && strings.ToUpper(strings.TrimSpace(cmd.Room)) != s.Code {
		return nil, fmt.Errorf("%w: %s", ErrNotInRoom, cmd.Room)
	}

	room, ok := g.registry.Room(s.Code)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Code)
	}
	return room, nil
}

func (g *Gateway) start(conn Conn, cmd Command) error {
	room, err := g.roomFor(conn, cmd)
	if err != nil {
		return err
	}

	if err := room.Start(conn.ID()); err != nil {
		return err
	}

	g.logf("ROOMS: Room %s started", room.Code())

	return nil
}

func (g *Gateway) next(conn Conn, cmd Command) error {
	room, err := g.roomFor(conn, cmd)
	if err != nil {
		return err
	}

	_, complete, err := room.Advance(conn.ID())
	if err != nil {
		return err
	}

	if complete {
		g.logf("ROOMS: Room %s complete", room.Code())
	}

	return nil
}

func (g *Gateway) respond(conn Conn, cmd Command) error {
	category, err := ParseCategory(cmd.Colour)
	if err != nil {
		return err
	}

	room, err := g.roomFor(conn, cmd)
	if err != nil {
		return err
	}

	return room.RecordResponse(conn.ID(), category)
}

// Disconnect forgets a connection and removes it from every room.
func (g *Gateway) Disconnect(conn Conn) {
	g.mu.Lock()
	delete(g.sessions, conn.ID())
	g.mu.Unlock()

	for _, code := range g.registry.RemoveConnection(conn.ID()) {
		g.logf("ROOMS: %s left room %s", conn.ID(), code)
	}
}
