// Package store defines the persistence adapter for per-user finance
// documents. The document is read and written wholesale: concurrent writers
// race at last-write-wins granularity at the document level, and remote
// changes are echoed back through Watch.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/agusantonetti/smartmoney/internal/domain"
)

// ErrNotFound is returned by Load when the user has no stored document yet.
var ErrNotFound = errors.New("store: document not found")

// Document is the whole per-user state as persisted: the profile aggregate
// plus the sibling transaction collection.
type Document struct {
	Profile      domain.FinancialProfile `json:"profile"`
	Transactions []domain.Transaction    `json:"transactions"`
	UpdatedAt    time.Time               `json:"updatedAt"`
}

// Normalize returns a copy with nil collections defaulted, safe to aggregate.
func (d Document) Normalize() Document {
	d.Profile = d.Profile.Normalize()
	if d.Transactions == nil {
		d.Transactions = []domain.Transaction{}
	}
	return d
}

// Store is the document persistence adapter.
//
// Watch delivers the document whenever it changes remotely, including echoes
// of the caller's own saves. The channel is closed when ctx is done.
// Implementations decide delivery cadence; consumers must treat every
// delivery as a full replacement.
type Store interface {
	Load(ctx context.Context, userID string) (*Document, error)
	Save(ctx context.Context, userID string, doc *Document) error
	Watch(ctx context.Context, userID string) (<-chan *Document, error)
	Close() error
}
