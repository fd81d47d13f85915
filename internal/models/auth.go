package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is an opaque, server-tracked session bound to a device.
// Rows are flipped inactive on logout, expiry or cap eviction; the sweeper
// hard-deletes them later.
type RefreshToken struct {
	ID         uint64    `db:"id"          json:"id"`
	Token      string    `db:"token"       json:"token"`
	UserID     uuid.UUID `db:"user_id"     json:"userId"`
	CreatedAt  time.Time `db:"created_at"  json:"createdAt"`
	ExpiresAt  time.Time `db:"expires_at"  json:"expiresAt"`
	Active     bool      `db:"active"      json:"active"`
	DeviceInfo string    `db:"device_info" json:"deviceInfo"`
	IP         string    `db:"ip"          json:"ip"`
}

func (t *RefreshToken) IsExpired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}

// Device is the bounded device description captured at session creation.
type Device struct {
	Info string
	IP   string
}

// Session is a row of the "manage sessions" listing: an active refresh
// token joined with the owner's display fields.
type Session struct {
	ID         uint64    `db:"id"          json:"id"`
	DeviceInfo string    `db:"device_info" json:"deviceInfo"`
	IP         string    `db:"ip"          json:"ip"`
	CreatedAt  time.Time `db:"created_at"  json:"createdAt"`
	ExpiresAt  time.Time `db:"expires_at"  json:"expiresAt"`
	UserName   string    `db:"user_name"   json:"userName"`
	UserEmail  string    `db:"user_email"  json:"userEmail"`
	UserAvatar string    `db:"user_avatar" json:"userAvatar"`
}
