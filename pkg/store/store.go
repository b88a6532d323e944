// Package store persists uploaded graph snapshots.
//
// This package defines the Store interface with implementations for
// different backends:
//   - memory: In-memory storage for development/testing
//   - mongo: Document-store backend for the server deployment
//
// Records carry the raw snapshot plus listing metadata so the host UI can
// enumerate uploads without loading graph data. IDs are UUIDs assigned on
// first Put.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/argviz/argviz/pkg/snapshot"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("snapshot not found")

	// ErrMissingSnapshot is returned by Put when the record has no
	// snapshot payload.
	ErrMissingSnapshot = errors.New("record has no snapshot")
)

// Record is one stored snapshot with its identity and timestamps.
type Record struct {
	ID        string             `json:"id" bson:"_id"`
	Name      string             `json:"name" bson:"name"`
	Snapshot  *snapshot.Snapshot `json:"snapshot" bson:"snapshot"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// Info is the listing view of a record: metadata without graph data.
type Info struct {
	ID             string    `json:"id" bson:"_id"`
	Name           string    `json:"name" bson:"name"`
	NumNodes       int       `json:"num_nodes" bson:"num_nodes"`
	NumEdges       int       `json:"num_edges" bson:"num_edges"`
	NumSamples     int       `json:"num_samples" bson:"num_samples"`
	SequenceLength float64   `json:"sequence_length" bson:"sequence_length"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}

// Store is the interface for snapshot storage backends.
type Store interface {
	// Get retrieves a record by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*Record, error)

	// Put stores a record, assigning a UUID when ID is empty. The
	// record's timestamps are maintained by the store.
	Put(ctx context.Context, rec *Record) error

	// Delete removes a record. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id string) error

	// List enumerates stored records, newest first.
	List(ctx context.Context) ([]Info, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// infoOf projects a record onto its listing view.
func infoOf(rec *Record) Info {
	info := Info{
		ID:        rec.ID,
		Name:      rec.Name,
		CreatedAt: rec.CreatedAt,
	}
	if rec.Snapshot != nil {
		info.NumNodes = rec.Snapshot.Metadata.NumNodes
		info.NumEdges = rec.Snapshot.Metadata.NumEdges
		info.NumSamples = rec.Snapshot.Metadata.NumSamples
		info.SequenceLength = rec.Snapshot.Metadata.SequenceLength
	}
	return info
}

// prepare validates a record before storage and fills identity and
// timestamps in place.
func prepare(rec *Record) error {
	if rec.Snapshot == nil {
		return ErrMissingSnapshot
	}
	now := time.Now().UTC()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
		rec.CreatedAt = now
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	return nil
}
