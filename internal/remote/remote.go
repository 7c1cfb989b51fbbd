// Package remote holds the realtime document stores a board can live in.
//
// A store keeps, per board, an append-with-mutation collection of loosely typed task documents,
// assigns creation/update timestamps itself, and pushes full snapshots to subscribers whenever
// the board changes. Typed decoding happens later, at the feed boundary.
package remote

import "context"

// Doc is a raw task document. Timestamps are decimal microseconds since the Unix epoch,
// stored under model.FieldCreatedAt and model.FieldUpdatedAt.
type Doc struct {
	ID     string
	Fields map[string]string
}

// Where is an optional equality filter. The zero value matches every document.
type Where struct {
	Field string
	Value string
}

func (w Where) matches(fields map[string]string) bool {
	if w.Field == "" {
		return true
	}
	return fields[w.Field] == w.Value
}

// Store is the contract every backend implements.
type Store interface {
	// Create appends a document and returns its store-assigned id.
	// createdAt and updatedAt are set from the store's clock.
	Create(ctx context.Context, board string, fields map[string]string) (string, error)
	// Update merges fields into an existing document and refreshes updatedAt.
	// It returns ErrNotFound when the document does not exist.
	Update(ctx context.Context, board, id string, fields map[string]string) error
	// Delete removes a document. Deleting a missing id succeeds.
	Delete(ctx context.Context, board, id string) error
	// DeleteBatch removes all ids atomically: either every delete applies or none does.
	DeleteBatch(ctx context.Context, board string, ids []string) error
	// Query returns the board's documents ordered by createdAt, newest first.
	Query(ctx context.Context, board string, where Where) ([]Doc, error)
	// Subscribe delivers the full document list of board on every change, starting with the
	// current state. onError is called at most once, after which nothing more is delivered.
	// The returned cancel func stops delivery.
	Subscribe(board string, onSnapshot func([]Doc), onError func(error)) (cancel func())

	Ping(ctx context.Context) error
	Close() error
}

func copyFields(in map[string]string) map[string]string {
	out := make(map[string]string, len(in)+2)
	for k, v := range in {
		out[k] = v
	}
	return out
}
