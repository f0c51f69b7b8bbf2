package ai

import "context"

//go:generate go run go.uber.org/mock/mockgen -source=ai.go -destination=mocks/mock.go
type Client interface {
	// Rewrite rephrases a news item for social media
	Rewrite(ctx context.Context, title, body string) (string, error)

	// GenerateReply answers a comment left on one of our posts
	GenerateReply(ctx context.Context, originalPost, comment string) (string, error)

	// GenerateComment writes a comment for somebody else's post
	GenerateComment(ctx context.Context, postContent string) (string, error)

	// SplitIntoThread cuts text into chunks that fit limit once numbered
	SplitIntoThread(ctx context.Context, text string, limit int) ([]string, error)
}
