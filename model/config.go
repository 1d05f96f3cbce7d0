package model

import "time"

// Config holds the process-wide bot configuration loaded from the
// environment and the settings file.
type Config struct {
	BotToken      string
	LogWebhookURL string

	DatabasePath      string
	ReconcileInterval time.Duration
	HeartbeatInterval time.Duration
	WarningExpiry     time.Duration
}

// GuildConfig holds the per-guild settings consumed by the punishment
// subsystem. Empty identifiers mean the feature is unconfigured; jail and
// mute commands are unusable until their role is set.
type GuildConfig struct {
	GuildID       string `db:"guild_id"`
	JailRoleID    string `db:"jail_role_id"`
	JailChannelID string `db:"jail_channel_id"`
	MuteRoleID    string `db:"mute_role_id"`
	LogChannelID  string `db:"log_channel_id"`
}
