package handlers

import (
	"log"
	"pidroid/model"
	"pidroid/punishments"
	"pidroid/utils/database/cases"
	"pidroid/utils/database/guilds"

	"github.com/jmoiron/sqlx"
)

// HandleMemberJoin re-applies jail and mute roles to a rejoining member with
// an unexpired punishment, so leaving and rejoining does not dodge it.
func HandleMemberJoin(db *sqlx.DB, actions punishments.GuildActions, guildID, userID string) {
	cfg, err := guilds.GetConfig(db, guildID)
	if err != nil {
		log.Printf("Error loading configuration for guild %s on member join: %v", guildID, err)
		return
	}

	if cfg.JailRoleID != "" {
		jailed, err := cases.IsCurrentlyJailed(db, guildID, userID)
		if err != nil {
			log.Printf("Error checking jail state for user %s in guild %s: %v", userID, guildID, err)
		} else if jailed {
			if err := actions.AddRole(guildID, userID, cfg.JailRoleID); err != nil {
				log.Printf("Error re-applying jail role to user %s in guild %s: %v", userID, guildID, err)
			}
		}
	}

	if cfg.MuteRoleID != "" {
		muted, err := cases.IsCurrentlyMuted(db, guildID, userID)
		if err != nil {
			log.Printf("Error checking mute state for user %s in guild %s: %v", userID, guildID, err)
		} else if muted {
			if err := actions.AddRole(guildID, userID, cfg.MuteRoleID); err != nil {
				log.Printf("Error re-applying mute role to user %s in guild %s: %v", userID, guildID, err)
			}
		}
	}
}

// HandleMemberUnban revokes any stored ban case once Discord reports an
// unban, including unbans performed by moderators outside the bot.
func HandleMemberUnban(db *sqlx.DB, guildID, userID string) {
	if err := cases.RevokeByType(db, model.PunishmentBan, guildID, userID); err != nil {
		log.Printf("Error revoking ban record for user %s in guild %s: %v", userID, guildID, err)
	}
}

// HandleMemberRolesRemoved keeps the store consistent when a moderator
// manually strips a jail or mute role: the matching active case is revoked.
func HandleMemberRolesRemoved(db *sqlx.DB, guildID, userID string, removedRoles []string) {
	if len(removedRoles) == 0 {
		return
	}
	cfg, err := guilds.GetConfig(db, guildID)
	if err != nil {
		log.Printf("Error loading configuration for guild %s on member update: %v", guildID, err)
		return
	}

	for _, roleID := range removedRoles {
		if roleID == cfg.JailRoleID && cfg.JailRoleID != "" {
			revokeIfActive(db, model.PunishmentJail, guildID, userID)
		}
		if roleID == cfg.MuteRoleID && cfg.MuteRoleID != "" {
			revokeIfActive(db, model.PunishmentMute, guildID, userID)
		}
	}
}

func revokeIfActive(db *sqlx.DB, kind model.PunishmentType, guildID, userID string) {
	active, err := cases.IsCurrentlyPunished(db, kind, guildID, userID)
	if err != nil {
		log.Printf("Error checking %s state for user %s in guild %s: %v", kind, userID, guildID, err)
		return
	}
	if !active {
		return
	}
	if err := cases.RevokeByType(db, kind, guildID, userID); err != nil {
		log.Printf("Error revoking %s record for user %s in guild %s: %v", kind, userID, guildID, err)
	}
}

// HandleRoleDelete clears configuration references to a deleted role.
func HandleRoleDelete(db *sqlx.DB, guildID, roleID string) {
	if err := guilds.ClearRoleReferences(db, guildID, roleID); err != nil {
		log.Printf("Error clearing role references for guild %s: %v", guildID, err)
	}
}

// HandleChannelDelete clears configuration references to a deleted channel.
func HandleChannelDelete(db *sqlx.DB, guildID, channelID string) {
	if err := guilds.ClearChannelReferences(db, guildID, channelID); err != nil {
		log.Printf("Error clearing channel references for guild %s: %v", guildID, err)
	}
}
