// Package store persists conversation snapshots between sessions.
package store

import (
	"context"

	"github.com/madhava696/EACA/internal/conversation"
)

// Store saves and restores the finalized turns of a conversation under a
// caller-chosen key. Get returns nil with no error when nothing is stored
// at the key. Delete of an absent key is a no-op.
type Store interface {
	Get(ctx context.Context, key string) ([]conversation.Turn, error)
	Set(ctx context.Context, key string, turns []conversation.Turn) error
	Delete(ctx context.Context, key string) error
}
