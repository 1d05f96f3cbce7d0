package model

import (
	"fmt"
	"time"
)

// PunishmentType enumerates the punishment kinds a case can record.
type PunishmentType string

const (
	PunishmentBan     PunishmentType = "ban"
	PunishmentKick    PunishmentType = "kick"
	PunishmentJail    PunishmentType = "jail"
	PunishmentMute    PunishmentType = "mute"
	PunishmentWarning PunishmentType = "warning"
	PunishmentTimeout PunishmentType = "timeout"
)

// NeverExpires is the expiry sentinel for permanent punishments. Revoked
// cases get their expiry set to 0 instead of being deleted.
const NeverExpires int64 = -1

// MaxReasonLength caps the free-text reason on a case.
const MaxReasonLength = 512

// ValidPunishmentType reports whether t is one of the six known kinds.
func ValidPunishmentType(t PunishmentType) bool {
	switch t {
	case PunishmentBan, PunishmentKick, PunishmentJail, PunishmentMute, PunishmentWarning, PunishmentTimeout:
		return true
	}
	return false
}

// Case represents a single punishment record in the database.
// The database table is named 'cases'.
type Case struct {
	ID            int64          `db:"id"` // Primary Key, Auto-increment
	CaseID        string         `db:"case_id"`
	Type          PunishmentType `db:"type"`
	GuildID       string         `db:"guild_id"`
	UserID        string         `db:"user_id"`
	UserName      string         `db:"user_name"`
	ModeratorID   string         `db:"moderator_id"`
	ModeratorName string         `db:"moderator_name"`
	Reason        string         `db:"reason"`
	IssuedAt      int64          `db:"issued_at"`  // Unix seconds
	ExpiresAt     int64          `db:"expires_at"` // Unix seconds, NeverExpires for permanent, 0 once revoked
	Visible       bool           `db:"visible"`    // false hides invalidated warnings from all current queries
}

// HasExpired reports whether the punishment has expired at the given time.
func (c *Case) HasExpired(now time.Time) bool {
	if c.ExpiresAt == NeverExpires {
		return false
	}
	return c.ExpiresAt <= now.Unix()
}

// CleanReason returns the reason, substituting a placeholder when one was
// never provided.
func (c *Case) CleanReason() string {
	if c.Reason == "" {
		return "None"
	}
	return c.Reason
}

// DurationString renders the remaining punishment duration for embeds.
func (c *Case) DurationString(now time.Time) string {
	if c.ExpiresAt == NeverExpires {
		return "∞"
	}
	if c.HasExpired(now) {
		return "Expired."
	}
	return fmt.Sprintf("<t:%d:R>", c.ExpiresAt)
}
