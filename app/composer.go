package app

import "context"

// Composer collects a caption or comment body outside the TUI, starting
// from initial. The CLI's -e flags go through it; the TUI uses its own
// textarea instead.
type Composer interface {
	Compose(ctx context.Context, initial string) (string, error)
}
