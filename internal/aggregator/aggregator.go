package aggregator

import "context"

// Result summarises one aggregation run.
type Result struct {
	Fetched   int
	Rejected  int
	Created   int
	Scheduled int
	// FailedSources names the sources whose fetch returned an error.
	FailedSources []string
	// Skipped is set when another run was still in progress.
	Skipped bool
}

//go:generate go run go.uber.org/mock/mockgen -source=aggregator.go -destination=mocks/mock.go
type Aggregator interface {
	// Aggregate pulls every source, drops duplicates and stores the rest as pending posts.
	Aggregate(ctx context.Context) (Result, error)
}
