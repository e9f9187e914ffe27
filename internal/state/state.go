// Package state holds the application state for each user session and the
// command/reducer cycle around it. Every user action is an intent value
// consumed by a pure reducer that returns the next state plus side-effect
// descriptors; the Manager executes the effects (persist, broadcast) and
// folds remote echoes back in. State is copy-on-write: mutations build a new
// value, never modify the current one in place.
package state

import (
	"github.com/agusantonetti/smartmoney/internal/domain"
	"github.com/agusantonetti/smartmoney/internal/store"
)

// State is the materialized per-user document.
type State struct {
	Profile      domain.FinancialProfile
	Transactions []domain.Transaction
}

// FromDocument builds a State from a stored document.
func FromDocument(doc *store.Document) State {
	d := doc.Normalize()
	return State{Profile: d.Profile, Transactions: d.Transactions}
}

// Document converts the state back to its persisted form.
func (s State) Document() *store.Document {
	return &store.Document{Profile: s.Profile, Transactions: s.Transactions}
}

// Command is a user intent applied to the state.
type Command interface{ isCommand() }

// AddTransaction prepends a new transaction.
type AddTransaction struct {
	Transaction domain.Transaction
}

// DeleteTransaction removes a transaction by ID. Deletion is an array
// filter; there is no tombstoning.
type DeleteTransaction struct {
	ID string
}

// UpdateProfile replaces the whole profile aggregate.
type UpdateProfile struct {
	Profile domain.FinancialProfile
}

// ReplaceDocument replaces the whole state, used for remote echoes and data
// restores. Remote replacements are not re-persisted.
type ReplaceDocument struct {
	Document *store.Document
	Remote   bool
}

func (AddTransaction) isCommand()    {}
func (DeleteTransaction) isCommand() {}
func (UpdateProfile) isCommand()     {}
func (ReplaceDocument) isCommand()   {}

// Effect describes a side effect the Manager must run after a reduction.
type Effect int

const (
	// EffectPersist saves the new state to the document store.
	EffectPersist Effect = iota
	// EffectBroadcast pushes the new state to realtime subscribers.
	EffectBroadcast
	// EffectSnapshot enqueues a metrics-snapshot export.
	EffectSnapshot
)

// Reduce applies a command to the state. It is pure; effects are returned
// as descriptors, never executed here.
func Reduce(s State, cmd Command) (State, []Effect) {
	switch c := cmd.(type) {
	case AddTransaction:
		next := s
		next.Transactions = make([]domain.Transaction, 0, len(s.Transactions)+1)
		next.Transactions = append(next.Transactions, c.Transaction)
		next.Transactions = append(next.Transactions, s.Transactions...)
		return next, []Effect{EffectPersist, EffectBroadcast, EffectSnapshot}

	case DeleteTransaction:
		next := s
		next.Transactions = make([]domain.Transaction, 0, len(s.Transactions))
		for _, tx := range s.Transactions {
			if tx.ID != c.ID {
				next.Transactions = append(next.Transactions, tx)
			}
		}
		return next, []Effect{EffectPersist, EffectBroadcast}

	case UpdateProfile:
		next := s
		next.Profile = c.Profile.Normalize()
		return next, []Effect{EffectPersist, EffectBroadcast, EffectSnapshot}

	case ReplaceDocument:
		next := FromDocument(c.Document)
		if c.Remote {
			return next, []Effect{EffectBroadcast}
		}
		return next, []Effect{EffectPersist, EffectBroadcast}

	default:
		return s, nil
	}
}
