/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package healthcheck

import "errors"

var (
	ErrNotFound        = errors.New("room not found")
	ErrUnauthorized    = errors.New("only the room owner may do that")
	ErrInvalidState    = errors.New("invalid room state")
	ErrUnknownCategory = errors.New("unknown response category")
	ErrInvalidCommand  = errors.New("invalid command")
	ErrNotInRoom       = errors.New("connection is not in that room")
)

// errorCode maps a rejection to the stable code sent to clients.
func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrUnknownCategory):
		return "invalid-category"
	case errors.Is(err, ErrNotInRoom):
		return "not-in-room"
	case errors.Is(err, ErrInvalidState):
		return "invalid-state"
	case errors.Is(err, ErrNotFound):
		return "not-found"
	default:
		return "invalid-command"
	}
}
