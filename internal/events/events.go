// Package events provides the in-process event bus used to fan system
// changes out to listeners: cache invalidation, the websocket stream and
// anything else that reacts to marketplace activity.
package events

import (
	"time"
)

// Type identifies a kind of system event.
type Type string

const (
	TypeItemCreated  Type = "ITEM_CREATED"
	TypeItemUpdated  Type = "ITEM_UPDATED"
	TypeItemDeleted  Type = "ITEM_DELETED"
	TypeRatesSynced  Type = "RATES_SYNCED"
	TypeBackupDone   Type = "BACKUP_DONE"
	TypeCacheCleaned Type = "CACHE_CLEANED"
)

// AllTypes lists every known event type, for subscribers that want the
// full stream.
var AllTypes = []Type{
	TypeItemCreated,
	TypeItemUpdated,
	TypeItemDeleted,
	TypeRatesSynced,
	TypeBackupDone,
	TypeCacheCleaned,
}

// Event represents a system event.
type Event struct {
	Type      Type        `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}
