// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// User represents a registered operator account. The password is stored only
// as an Argon2id hash with a per-user random salt.
type User struct {
	ID        uuid.UUID // PK
	Name      string    // unique, case-sensitive
	PwdHash   []byte    // Argon2id(password, Salt)
	Salt      []byte    // per-user auth salt
	CreatedAt time.Time
}

// Token is an issued session token with its absolute expiry (for diagnostics;
// validity is determined entirely by the signature and the embedded expiry).
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Group is one uploaded participant-group row.
type Group struct {
	GroupID int64  `json:"group_id"`
	Members int64  `json:"members"`
	Gender  string `json:"gender"`
}

// Hostel is one uploaded hostel-room inventory row.
type Hostel struct {
	HostelName string `json:"hostel_name"`
	RoomNumber int64  `json:"room_number"`
	Capacity   int64  `json:"capacity"`
	Gender     string `json:"gender"`
}

// Notification kinds pushed to viewers after a successful upload.
const (
	KindGroupsUpdated  = "groups-updated"
	KindHostelsUpdated = "hostels-updated"
)

// Notification is the ephemeral status message fanned out to every connected
// viewer. It is never persisted.
type Notification struct {
	Event   string `json:"event"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// GroupsUpdated builds the notification announcing a groups upload.
func GroupsUpdated() Notification {
	return Notification{Event: "update", Kind: KindGroupsUpdated, Message: "Groups updated"}
}

// HostelsUpdated builds the notification announcing a hostels upload.
func HostelsUpdated() Notification {
	return Notification{Event: "update", Kind: KindHostelsUpdated, Message: "Hostels updated"}
}
