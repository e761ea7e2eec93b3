// Package session holds the per-conversation state the engine hands
// back to its caller after every dispatch: the order ledger and the
// conversational phase, as one explicit struct rather than an untyped
// state blob.
//
// The engine itself is stateless between calls; persisting a Session is
// the caller's job. This package supplies a Store for callers that want
// one, with an in-memory implementation for tests and a BadgerDB-backed
// one for a long-running host process.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/signalwire/sigmond-holyguacamole/pkg/flow"
	"github.com/signalwire/sigmond-holyguacamole/pkg/menu"
	"github.com/signalwire/sigmond-holyguacamole/pkg/order"
)

// Session is the complete caller-persisted state of one conversation.
type Session struct {
	ID        string      `json:"id" msgpack:"id"`
	Order     order.Order `json:"order" msgpack:"order"`
	Phase     flow.Phase  `json:"phase" msgpack:"phase"`
	UpdatedAt time.Time   `json:"updated_at" msgpack:"updated_at"`
}

// New creates a fresh session in the greeting phase. An empty id gets a
// generated UUID.
func New(id string, m *menu.Menu) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	return &Session{
		ID:    id,
		Order: *order.New(m.TaxBps),
		Phase: flow.Greeting,
	}
}
