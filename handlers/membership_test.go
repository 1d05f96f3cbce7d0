package handlers

import (
	"pidroid/model"
	"pidroid/utils/database/cases"
	"pidroid/utils/database/guilds"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeActions struct {
	added []string // "user:role"
}

func (f *fakeActions) BanUser(guildID, userID, reason string) error    { return nil }
func (f *fakeActions) UnbanUser(guildID, userID string) error          { return nil }
func (f *fakeActions) KickMember(guildID, userID, reason string) error { return nil }

func (f *fakeActions) AddRole(guildID, userID, roleID string) error {
	f.added = append(f.added, userID+":"+roleID)
	return nil
}

func (f *fakeActions) RemoveRole(guildID, userID, roleID string) error { return nil }

func (f *fakeActions) SetTimeout(guildID, userID string, until *time.Time, reason string) error {
	return nil
}

func (f *fakeActions) IsBanned(guildID, userID string) (bool, error) { return false, nil }

func (f *fakeActions) MemberRoles(guildID, userID string) ([]string, error) { return nil, nil }

func (f *fakeActions) UserExists(userID string) (bool, error) { return true, nil }

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, cases.CreateTables(db))
	require.NoError(t, guilds.CreateTables(db))
	return db
}

func TestMemberJoinReappliesActiveJail(t *testing.T) {
	db := newTestDB(t)
	actions := &fakeActions{}
	require.NoError(t, guilds.SetJailRole(db, "guild1", "role-jail"))

	_, err := cases.CreateCase(db, model.PunishmentJail, "guild1", "user1", "User One", "mod1", "Mod One", "", time.Now().Add(time.Hour).Unix())
	require.NoError(t, err)

	HandleMemberJoin(db, actions, "guild1", "user1")

	assert.Equal(t, []string{"user1:role-jail"}, actions.added,
		"rejoining must not dodge an active jail")
}

func TestMemberJoinReappliesActiveMute(t *testing.T) {
	db := newTestDB(t)
	actions := &fakeActions{}
	require.NoError(t, guilds.SetMuteRole(db, "guild1", "role-mute"))

	_, err := cases.CreateCase(db, model.PunishmentMute, "guild1", "user1", "User One", "mod1", "Mod One", "", model.NeverExpires)
	require.NoError(t, err)

	HandleMemberJoin(db, actions, "guild1", "user1")

	assert.Equal(t, []string{"user1:role-mute"}, actions.added)
}

func TestMemberJoinIgnoresExpiredPunishments(t *testing.T) {
	db := newTestDB(t)
	actions := &fakeActions{}
	require.NoError(t, guilds.SetJailRole(db, "guild1", "role-jail"))

	_, err := cases.CreateCase(db, model.PunishmentJail, "guild1", "user1", "User One", "mod1", "Mod One", "", model.NeverExpires)
	require.NoError(t, err)
	require.NoError(t, cases.RevokeByType(db, model.PunishmentJail, "guild1", "user1"))

	HandleMemberJoin(db, actions, "guild1", "user1")

	assert.Empty(t, actions.added)
}

func TestMemberUnbanRevokesStoredBan(t *testing.T) {
	db := newTestDB(t)

	_, err := cases.CreateCase(db, model.PunishmentBan, "guild1", "user1", "User One", "mod1", "Mod One", "", model.NeverExpires)
	require.NoError(t, err)

	HandleMemberUnban(db, "guild1", "user1")

	banned, err := cases.IsCurrentlyPunished(db, model.PunishmentBan, "guild1", "user1")
	require.NoError(t, err)
	assert.False(t, banned, "an unban outside the bot must not leave a stale record")
}

func TestManualRoleRemovalRevokesCase(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, guilds.SetMuteRole(db, "guild1", "role-mute"))

	_, err := cases.CreateCase(db, model.PunishmentMute, "guild1", "user1", "User One", "mod1", "Mod One", "", model.NeverExpires)
	require.NoError(t, err)

	HandleMemberRolesRemoved(db, "guild1", "user1", []string{"role-mute"})

	muted, err := cases.IsCurrentlyMuted(db, "guild1", "user1")
	require.NoError(t, err)
	assert.False(t, muted)
}

func TestUnrelatedRoleRemovalLeavesCases(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, guilds.SetMuteRole(db, "guild1", "role-mute"))

	_, err := cases.CreateCase(db, model.PunishmentMute, "guild1", "user1", "User One", "mod1", "Mod One", "", model.NeverExpires)
	require.NoError(t, err)

	HandleMemberRolesRemoved(db, "guild1", "user1", []string{"role-unrelated"})

	muted, err := cases.IsCurrentlyMuted(db, "guild1", "user1")
	require.NoError(t, err)
	assert.True(t, muted)
}

func TestRoleDeleteClearsConfiguration(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, guilds.SetJailRole(db, "guild1", "role-jail"))

	HandleRoleDelete(db, "guild1", "role-jail")

	cfg, err := guilds.GetConfig(db, "guild1")
	require.NoError(t, err)
	assert.Empty(t, cfg.JailRoleID)
}

func TestChannelDeleteClearsConfiguration(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, guilds.SetJailChannel(db, "guild1", "chan-jail"))

	HandleChannelDelete(db, "guild1", "chan-jail")

	cfg, err := guilds.GetConfig(db, "guild1")
	require.NoError(t, err)
	assert.Empty(t, cfg.JailChannelID)
}

func TestDiffRemovedRoles(t *testing.T) {
	removed := diffRemovedRoles([]string{"a", "b", "c"}, []string{"a", "c"})
	assert.Equal(t, []string{"b"}, removed)

	assert.Empty(t, diffRemovedRoles([]string{"a"}, []string{"a", "b"}))
	assert.Empty(t, diffRemovedRoles(nil, nil))
}
