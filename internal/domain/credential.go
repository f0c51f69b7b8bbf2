package domain

import (
	"encoding/json"
	"time"
)

// SocialCredential is opaque login material for one platform account.
type SocialCredential struct {
	ID          string
	Platform    Platform
	AccountName string
	Credentials json.RawMessage
	AccountType string
	IsActive    bool
	LastLogin   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BrowserSession is a persisted cookie blob for one platform.
type BrowserSession struct {
	ID          string
	Platform    Platform
	SessionData json.RawMessage
	UserAgent   string
	IsActive    bool
	LastUsed    time.Time
	CreatedAt   time.Time
}
