// Package model contains domain models passed between layers.
package model

import "time"

// EventType is the fixed event vocabulary emitted by the tracking SDK.
type EventType string

// Known event types. Purchase and InAppPurchase are the same business event
// under two (possibly drifted) schema names.
const (
	SessionStart  EventType = "session_start"
	LevelComplete EventType = "level_complete"
	Purchase      EventType = "purchase"
	InAppPurchase EventType = "in_app_purchase"
)

// PurchaseLike reports whether t counts as a purchase under either schema name.
func (t EventType) PurchaseLike() bool {
	return t == Purchase || t == InAppPurchase
}

// Event is one raw telemetry record. Immutable once stored; owned by the
// event store.
type Event struct {
	UserID      string
	TS          time.Time // UTC instant
	Type        EventType
	Amount      float64 // monetary value, meaningful only when HasAmount
	HasAmount   bool    // present only for purchase-like events
	IngestionID string  // opaque, used for duplicate detection
}

// Day returns the UTC calendar day the event belongs to.
func (e Event) Day() time.Time {
	return e.TS.UTC().Truncate(24 * time.Hour)
}

// DayBucket is the immutable set of events whose timestamps fall within one
// UTC calendar day, plus the count of records the store dropped for that day
// because they could not be parsed. Malformed records are not fatal; they
// only degrade the day's validity signal.
type DayBucket struct {
	Date      time.Time // UTC midnight
	Events    []Event
	Malformed int
}

// Empty reports whether the bucket holds no usable events.
func (b DayBucket) Empty() bool {
	return len(b.Events) == 0
}
