// Package gcs persists per-user finance documents as JSON objects in a
// Google Cloud Storage bucket, one object per user. A background poller on
// the object's generation number stands in for a realtime subscription:
// every generation change is read back and delivered to watchers, including
// echoes of this process's own saves.
package gcs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog"

	smstore "github.com/agusantonetti/smartmoney/internal/store"
)

// DefaultPollInterval is how often Watch checks the object generation.
const DefaultPollInterval = 5 * time.Second

// Store is a GCS-backed document store.
type Store struct {
	client       *storage.Client
	bucket       string
	pollInterval time.Duration
	log          zerolog.Logger
}

// New creates a GCS document store on the given bucket.
func New(ctx context.Context, bucket string, log zerolog.Logger) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs: create storage client: %w", err)
	}
	return &Store{
		client:       client,
		bucket:       bucket,
		pollInterval: DefaultPollInterval,
		log:          log,
	}, nil
}

func objectName(userID string) string {
	return fmt.Sprintf("users/%s/document.json", userID)
}

// Load implements store.Store.
func (s *Store) Load(ctx context.Context, userID string) (*smstore.Document, error) {
	obj := s.client.Bucket(s.bucket).Object(objectName(userID))

	r, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, smstore.ErrNotFound
		}
		return nil, fmt.Errorf("gcs: open document for %s: %w", userID, err)
	}
	defer r.Close()

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gcs: read document for %s: %w", userID, err)
	}

	var doc smstore.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("gcs: decode document for %s: %w", userID, err)
	}
	normalized := doc.Normalize()
	return &normalized, nil
}

// Save implements store.Store. The whole document is replaced; the last
// writer wins at object granularity.
func (s *Store) Save(ctx context.Context, userID string, doc *smstore.Document) error {
	saved := doc.Normalize()
	if saved.UpdatedAt.IsZero() {
		saved.UpdatedAt = time.Now().UTC()
	}

	raw, err := json.Marshal(saved)
	if err != nil {
		return fmt.Errorf("gcs: encode document for %s: %w", userID, err)
	}

	w := s.client.Bucket(s.bucket).Object(objectName(userID)).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs: write document for %s: %w", userID, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs: close document writer for %s: %w", userID, err)
	}

	s.log.Debug().Str("user_id", userID).Int("bytes", len(raw)).Msg("Document saved")
	return nil
}

// Watch implements store.Store by polling the object generation. The
// returned channel is closed when ctx is done.
func (s *Store) Watch(ctx context.Context, userID string) (<-chan *smstore.Document, error) {
	ch := make(chan *smstore.Document, 1)
	obj := s.client.Bucket(s.bucket).Object(objectName(userID))

	var lastGen int64
	if attrs, err := obj.Attrs(ctx); err == nil {
		lastGen = attrs.Generation
	} else if !errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("gcs: stat document for %s: %w", userID, err)
	}

	go func() {
		defer close(ch)
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			attrs, err := obj.Attrs(ctx)
			if err != nil {
				if !errors.Is(err, storage.ErrObjectNotExist) {
					s.log.Warn().Err(err).Str("user_id", userID).Msg("Document poll failed")
				}
				continue
			}
			if attrs.Generation == lastGen {
				continue
			}
			lastGen = attrs.Generation

			doc, err := s.Load(ctx, userID)
			if err != nil {
				s.log.Warn().Err(err).Str("user_id", userID).Msg("Document reload failed")
				continue
			}

			select {
			case ch <- doc:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	return s.client.Close()
}

var _ smstore.Store = (*Store)(nil)
