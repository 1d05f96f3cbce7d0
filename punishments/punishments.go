// Package punishments implements the moderation punishment model: typed
// ban/kick/jail/mute/warning/timeout punishments with issue and revoke
// behavior, persisted as cases and effected through Discord.
package punishments

import (
	"errors"
	"fmt"
	"log"
	"pidroid/model"
	"pidroid/utils/database/cases"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrReasonTooLong is returned when a punishment reason exceeds the cap.
var ErrReasonTooLong = errors.New("reason is too long, it must be below or equal to 512 characters")

// DefaultWarningDuration applies when a warning is issued without an
// explicit length.
const DefaultWarningDuration = 90 * 24 * time.Hour

// GuildActions covers the Discord-side mutations and lookups the punishment
// subsystem performs. The production implementation wraps a discordgo
// session; tests substitute a recording fake.
type GuildActions interface {
	BanUser(guildID, userID, reason string) error
	UnbanUser(guildID, userID string) error
	KickMember(guildID, userID, reason string) error
	AddRole(guildID, userID, roleID string) error
	RemoveRole(guildID, userID, roleID string) error
	SetTimeout(guildID, userID string, until *time.Time, reason string) error
	IsBanned(guildID, userID string) (bool, error)
	MemberRoles(guildID, userID string) ([]string, error)
	UserExists(userID string) (bool, error)
}

// Notifier delivers best-effort punishment notifications. Implementations
// must never fail the caller; delivery problems are logged and dropped.
// The case record is nil on revoke paths, which produce no new case.
type Notifier interface {
	NotifyUser(userID, message string)
	NotifyChannel(channelID string, record *model.Case, message string)
}

// Request carries the identifiers and capabilities a punishment needs. It
/// replaces the ambient command context of the framework layer: everything is
// explicit and passed by value.
type Request struct {
	DB       *sqlx.DB
	Actions  GuildActions
	Notifier Notifier

	GuildID   string
	GuildName string
	ChannelID string // empty suppresses chat notifications

	ModeratorID   string
	ModeratorName string

	// WarningExpiry overrides DefaultWarningDuration when positive.
	WarningExpiry time.Duration
}

// base holds the state shared by all punishment kinds.
type base struct {
	req  Request
	kind model.PunishmentType

	userID   string
	userName string

	reason    string
	expiresAt int64

	record *model.Case
}

func newBase(req Request, kind model.PunishmentType, userID, userName string) base {
	return base{
		req:       req,
		kind:      kind,
		userID:    userID,
		userName:  userName,
		expiresAt: model.NeverExpires,
	}
}

// SetReason sets the free-text reason, enforcing the length cap.
func (b *base) SetReason(reason string) error {
	if len(reason) > model.MaxReasonLength {
		return ErrReasonTooLong
	}
	b.reason = reason
	return nil
}

// SetDuration makes the punishment expire after d from now.
func (b *base) SetDuration(d time.Duration) {
	b.expiresAt = time.Now().Add(d).Unix()
}

// Case returns the persisted case after a successful Issue.
func (b *base) Case() *model.Case {
	return b.record
}

func (b *base) createEntry() (*model.Case, error) {
	record, err := cases.CreateCase(
		b.req.DB, b.kind, b.req.GuildID,
		b.userID, b.userName,
		b.req.ModeratorID, b.req.ModeratorName,
		b.reason, b.expiresAt,
	)
	if err != nil {
		return nil, err
	}
	b.record = record
	return record, nil
}

func (b *base) revokeEntry(kind model.PunishmentType) error {
	return cases.RevokeByType(b.req.DB, kind, b.req.GuildID, b.userID)
}

func (b *base) notifyUser(message string) {
	if b.req.Notifier == nil {
		return
	}
	b.req.Notifier.NotifyUser(b.userID, message)
}

func (b *base) notifyChat(message string) {
	if b.req.Notifier == nil || b.req.ChannelID == "" {
		return
	}
	b.req.Notifier.NotifyChannel(b.req.ChannelID, b.record, message)
}

// withReason appends the reason clause used across notification texts.
func (b *base) withReason(message string) string {
	if b.reason == "" {
		return message + "!"
	}
	return fmt.Sprintf("%s for the following reason: %s", message, b.reason)
}

// swallowRevokeError logs and discards an external mutation failure on a
// revoke path. Absence of the ban or role is the desired end state there,
// not a failure.
func swallowRevokeError(kind model.PunishmentType, userID string, err error) {
	if err != nil {
		log.Printf("Ignoring %s revocation error for user %s: %v", kind, userID, err)
	}
}
