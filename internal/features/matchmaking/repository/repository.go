package repository

import "context"

// QueueRepository manages the global matchmaking queue. The queue is a
// single shared document; implementations must serialize the read-modify-
// write so concurrent joiners never lose entries or double-claim a batch.
type QueueRepository interface {
	// JoinAndClaim enqueues userID and, when the queue reaches batchSize,
	// atomically removes and returns the first batchSize entries (FIFO).
	// When no batch forms, batch is nil and position is the user's 1-based
	// place in line. Joining while already queued keeps the original entry.
	JoinAndClaim(ctx context.Context, userID string, batchSize int) (batch []string, position int, err error)
	// Leave removes userID from the queue if present.
	Leave(ctx context.Context, userID string) error
	// Size returns the current queue length.
	Size(ctx context.Context) (int, error)
}
