// Package scanner contains the reconciliation sweep that converges live
// Discord guild state to the punishment intent stored in the case database.
package scanner

import (
	"fmt"
	"log"
	"pidroid/model"
	"pidroid/punishments"
	"pidroid/utils/database/cases"
	"pidroid/utils/database/guilds"
	"time"

	"github.com/jmoiron/sqlx"
)

// Reconciler periodically revokes punishments whose expiry has passed and
// undoes their Discord-side effects. The stored expiry is authoritative
// intent; the guild's live ban list and member roles are the effected state.
type Reconciler struct {
	db      *sqlx.DB
	actions punishments.GuildActions
}

func NewReconciler(db *sqlx.DB, actions punishments.GuildActions) *Reconciler {
	return &Reconciler{db: db, actions: actions}
}

// Tick runs one reconciliation pass. Every failure is logged and skipped so
// one broken case or guild never blocks the rest, and an error in one tick
// never stops the next.
func (r *Reconciler) Tick(now time.Time) {
	due, err := cases.ListActiveExpiringPunishments(r.db, now.Unix())
	if err != nil {
		log.Printf("Error listing expiring punishments: %v", err)
		return
	}

	for i := range due {
		if err := r.process(&due[i], now); err != nil {
			log.Printf("Error reconciling case %s in guild %s: %v", due[i].CaseID, due[i].GuildID, err)
		}
	}
}

// process revokes a single due case in the store, then undoes the Discord
// side effect. The claim is a conditional update so a punishment reissued
// between the scan and this call is left alone.
func (r *Reconciler) process(c *model.Case, now time.Time) error {
	claimed, err := cases.ClaimForRevocation(r.db, c.ID, now.Unix())
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	// A deleted account has nothing left to unban or unmute.
	exists, err := r.actions.UserExists(c.UserID)
	if err != nil || !exists {
		if err != nil {
			log.Printf("Could not resolve user %s for case %s, skipping Discord-side revocation: %v", c.UserID, c.CaseID, err)
		}
		return nil
	}

	switch c.Type {
	case model.PunishmentBan:
		return r.liftBan(c)
	case model.PunishmentMute:
		return r.liftMute(c)
	}
	// Jail roles are only removed by an explicit unjail; timeouts expire on
	// Discord's side natively. The store revocation above is all they need.
	return nil
}

// liftBan unbans the user if the guild still has them banned. A ban already
// lifted by a moderator acting through Discord directly is left alone.
func (r *Reconciler) liftBan(c *model.Case) error {
	banned, err := r.actions.IsBanned(c.GuildID, c.UserID)
	if err != nil {
		return fmt.Errorf("failed to check ban state: %w", err)
	}
	if !banned {
		return nil
	}
	if err := r.actions.UnbanUser(c.GuildID, c.UserID); err != nil {
		return fmt.Errorf("failed to unban user %s: %w", c.UserID, err)
	}
	log.Printf("Ban expired for user %s in guild %s (case %s)", c.UserID, c.GuildID, c.CaseID)
	return nil
}

// liftMute removes the configured mute role from the member. Missing
// configuration, a vanished member and an already-removed role each
// short-circuit cleanly rather than failing.
func (r *Reconciler) liftMute(c *model.Case) error {
	cfg, err := guilds.GetConfig(r.db, c.GuildID)
	if err != nil {
		return fmt.Errorf("failed to load guild configuration: %w", err)
	}
	if cfg.MuteRoleID == "" {
		return nil
	}

	roles, err := r.actions.MemberRoles(c.GuildID, c.UserID)
	if err != nil {
		// The member has likely left the guild; the join hook re-applies
		// active punishments if they come back.
		return nil
	}
	if !containsRole(roles, cfg.MuteRoleID) {
		return nil
	}

	if err := r.actions.RemoveRole(c.GuildID, c.UserID, cfg.MuteRoleID); err != nil {
		return fmt.Errorf("failed to remove mute role from user %s: %w", c.UserID, err)
	}
	log.Printf("Mute expired for user %s in guild %s (case %s)", c.UserID, c.GuildID, c.CaseID)
	return nil
}

func containsRole(roles []string, roleID string) bool {
	for _, r := range roles {
		if r == roleID {
			return true
		}
	}
	return false
}
