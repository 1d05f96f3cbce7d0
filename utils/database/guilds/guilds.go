package guilds

import (
	"fmt"
	"pidroid/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// CreateTables ensures the guild configuration table exists.
func CreateTables(db *sqlx.DB) error {
	schema := `CREATE TABLE IF NOT EXISTS guild_configurations (
	          guild_id TEXT PRIMARY KEY,
	          jail_role_id TEXT NOT NULL DEFAULT '',
	          jail_channel_id TEXT NOT NULL DEFAULT '',
	          mute_role_id TEXT NOT NULL DEFAULT '',
	          log_channel_id TEXT NOT NULL DEFAULT ''
	      );`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create guild_configurations table: %w", err)
	}
	return nil
}

// GetConfig returns the configuration for a guild, creating an empty row on
// first access.
func GetConfig(db *sqlx.DB, guildID string) (*model.GuildConfig, error) {
	if _, err := db.Exec(`INSERT OR IGNORE INTO guild_configurations (guild_id) VALUES (?)`, guildID); err != nil {
		return nil, fmt.Errorf("failed to initialize configuration for guild %s: %w", guildID, err)
	}
	var cfg model.GuildConfig
	if err := db.Get(&cfg, `SELECT * FROM guild_configurations WHERE guild_id = ?`, guildID); err != nil {
		return nil, fmt.Errorf("failed to get configuration for guild %s: %w", guildID, err)
	}
	return &cfg, nil
}

// SetJailRole updates the guild's jail role. An empty id unsets it.
func SetJailRole(db *sqlx.DB, guildID, roleID string) error {
	return setField(db, guildID, "jail_role_id", roleID)
}

// SetMuteRole updates the guild's mute role. An empty id unsets it.
func SetMuteRole(db *sqlx.DB, guildID, roleID string) error {
	return setField(db, guildID, "mute_role_id", roleID)
}

// SetJailChannel updates the guild's jail channel. An empty id unsets it.
func SetJailChannel(db *sqlx.DB, guildID, channelID string) error {
	return setField(db, guildID, "jail_channel_id", channelID)
}

// SetLogChannel updates the guild's log channel. An empty id unsets it.
func SetLogChannel(db *sqlx.DB, guildID, channelID string) error {
	return setField(db, guildID, "log_channel_id", channelID)
}

func setField(db *sqlx.DB, guildID, column, value string) error {
	if _, err := db.Exec(`INSERT OR IGNORE INTO guild_configurations (guild_id) VALUES (?)`, guildID); err != nil {
		return fmt.Errorf("failed to initialize configuration for guild %s: %w", guildID, err)
	}
	query := fmt.Sprintf(`UPDATE guild_configurations SET %s = ? WHERE guild_id = ?`, column)
	if _, err := db.Exec(query, value, guildID); err != nil {
		return fmt.Errorf("failed to update %s for guild %s: %w", column, guildID, err)
	}
	return nil
}

// ClearRoleReferences unsets any jail or mute role matching a deleted role,
// so the configuration never points at a role that no longer exists.
func ClearRoleReferences(db *sqlx.DB, guildID, roleID string) error {
	query := `UPDATE guild_configurations SET
			  jail_role_id = CASE WHEN jail_role_id = ? THEN '' ELSE jail_role_id END,
			  mute_role_id = CASE WHEN mute_role_id = ? THEN '' ELSE mute_role_id END
			  WHERE guild_id = ?`
	if _, err := db.Exec(query, roleID, roleID, guildID); err != nil {
		return fmt.Errorf("failed to clear role references for guild %s: %w", guildID, err)
	}
	return nil
}

// ClearChannelReferences unsets any jail or log channel matching a deleted
// channel.
func ClearChannelReferences(db *sqlx.DB, guildID, channelID string) error {
	query := `UPDATE guild_configurations SET
			  jail_channel_id = CASE WHEN jail_channel_id = ? THEN '' ELSE jail_channel_id END,
			  log_channel_id = CASE WHEN log_channel_id = ? THEN '' ELSE log_channel_id END
			  WHERE guild_id = ?`
	if _, err := db.Exec(query, channelID, channelID, guildID); err != nil {
		return fmt.Errorf("failed to clear channel references for guild %s: %w", guildID, err)
	}
	return nil
}
