package command

import "context"

type Client interface {
	// HandleCommand serves operator commands until ctx is done or the update stream closes.
	HandleCommand(ctx context.Context) error
}
