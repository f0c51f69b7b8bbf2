package domain

import (
	"encoding/json"
	"time"
)

const (
	ConfigEmergencyStop      = "emergency_stop"
	ConfigAutoEngagement     = "auto_engagement"
	ConfigTwitterAccountType = "twitter_account_type"
)

// Configuration is a runtime key -> JSON value setting.
type Configuration struct {
	ID          string
	Key         string
	Value       json.RawMessage
	Description string
	UpdatedAt   time.Time
}
