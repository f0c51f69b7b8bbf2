// Package browser owns the per-platform delivery sessions used to publish and engage.
package browser

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/orgball2608/technews-autopilot/internal/domain"
)

var (
	// ErrLoginRequired means the driver lost its authenticated state.
	ErrLoginRequired = errors.New("login required")
	ErrClosed        = errors.New("browser session closed")
)

// Message is one unit of text delivered to a platform.
type Message struct {
	Text string
	// ReplyTo is the ref returned by a previous Publish, empty for a new post
	ReplyTo string
}

// Credentials is the login material stored in SocialCredential.Credentials.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

func ParseCredentials(raw json.RawMessage) (Credentials, error) {
	var c Credentials
	if err := json.Unmarshal(raw, &c); err != nil {
		return Credentials{}, err
	}
	return c, nil
}

//go:generate go run go.uber.org/mock/mockgen -source=browser.go -destination=mocks/mock.go
type Driver interface {
	Platform() domain.Platform

	// RestoreSession loads exported state and reports whether the driver is usable.
	// state may be nil. Drivers that need no login return true.
	RestoreSession(ctx context.Context, state json.RawMessage) (bool, error)
	Login(ctx context.Context, creds Credentials) error
	ExportSession(ctx context.Context) (json.RawMessage, error)

	// Publish delivers msg and returns a reference usable as Message.ReplyTo.
	Publish(ctx context.Context, msg Message) (string, error)
	// Engage performs action against the newest post of target.
	Engage(ctx context.Context, action domain.EngagementType, target, content string) error

	Close() error
}
