/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package healthcheck

// Outbound event types.
const (
	EventRoomID        = "room-id"
	EventJoined        = "joined"
	EventNewUser       = "new-user"
	EventNotFound      = "not-found"
	EventGameStart     = "game-start"
	EventQuestion      = "question"
	EventRoundResponse = "round-response"
	EventComplete      = "complete"
	EventGameEnded     = "game-ended"
	EventError         = "error"
)

// Event is a single message pushed to a connection.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// ErrorPayload accompanies EventError.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// QuestionPayload accompanies EventQuestion.
type QuestionPayload struct {
	Question
	Index int `json:"index"`
	Total int `json:"total"`
}

// Sender is anything that can receive events. Send must not block.
type Sender interface {
	Send(Event)
}
