package cases

import (
	"pidroid/model"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, CreateTables(db))
	return db
}

// backdate moves a case's expiry into the past, bypassing the creation-time
// invariant that expiry must not precede issuance.
func backdate(t *testing.T, db *sqlx.DB, caseID string, expiresAt int64) {
	t.Helper()
	_, err := db.Exec(`UPDATE cases SET expires_at = ? WHERE case_id = ?`, expiresAt, caseID)
	require.NoError(t, err)
}

func TestCreateCaseAppearsActive(t *testing.T) {
	db := newTestDB(t)

	expiry := time.Now().Add(time.Hour).Unix()
	record, err := CreateCase(db, model.PunishmentMute, "guild1", "user1", "User One", "mod1", "Mod One", "spamming", expiry)
	require.NoError(t, err)
	require.Len(t, record.CaseID, 6)
	assert.False(t, record.HasExpired(time.Now()))

	active, err := ListActiveCases(db, "guild1", "user1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, record.CaseID, active[0].CaseID)
	assert.False(t, active[0].HasExpired(time.Now()))
}

func TestCreateCaseRejectsUnknownType(t *testing.T) {
	db := newTestDB(t)

	_, err := CreateCase(db, "banish", "guild1", "user1", "User One", "mod1", "Mod One", "", model.NeverExpires)
	require.Error(t, err)
}

func TestCreateCaseRejectsExpiryBeforeIssue(t *testing.T) {
	db := newTestDB(t)

	_, err := CreateCase(db, model.PunishmentMute, "guild1", "user1", "User One", "mod1", "Mod One", "", time.Now().Add(-time.Hour).Unix())
	require.Error(t, err)
}

func TestCreateCaseAllocatesUniqueIDs(t *testing.T) {
	db := newTestDB(t)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		record, err := CreateCase(db, model.PunishmentWarning, "guild1", "user1", "User One", "mod1", "Mod One", "w", model.NeverExpires)
		require.NoError(t, err)
		require.False(t, seen[record.CaseID], "case id %s allocated twice", record.CaseID)
		seen[record.CaseID] = true
	}
}

func TestGetCaseOnlyReturnsVisible(t *testing.T) {
	db := newTestDB(t)

	record, err := CreateCase(db, model.PunishmentWarning, "guild1", "user1", "User One", "mod1", "Mod One", "w", model.NeverExpires)
	require.NoError(t, err)

	got, err := GetCase(db, "guild1", record.CaseID)
	require.NoError(t, err)
	assert.Equal(t, record.CaseID, got.CaseID)

	require.NoError(t, InvalidateWarning(db, "guild1", record.CaseID))
	_, err = GetCase(db, "guild1", record.CaseID)
	assert.ErrorIs(t, err, ErrCaseNotFound)
}

func TestListCasesNewestFirst(t *testing.T) {
	db := newTestDB(t)

	first, err := CreateCase(db, model.PunishmentWarning, "guild1", "user1", "User One", "mod1", "Mod One", "first", model.NeverExpires)
	require.NoError(t, err)
	second, err := CreateCase(db, model.PunishmentMute, "guild1", "user1", "User One", "mod1", "Mod One", "second", model.NeverExpires)
	require.NoError(t, err)

	records, err := ListCases(db, "guild1", "user1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, second.CaseID, records[0].CaseID)
	assert.Equal(t, first.CaseID, records[1].CaseID)
}

func TestRevokeByTypeIsIdempotent(t *testing.T) {
	db := newTestDB(t)

	_, err := CreateCase(db, model.PunishmentJail, "guild1", "user1", "User One", "mod1", "Mod One", "", model.NeverExpires)
	require.NoError(t, err)

	require.NoError(t, RevokeByType(db, model.PunishmentJail, "guild1", "user1"))

	records, err := ListCases(db, "guild1", "user1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	afterFirst := records[0]
	assert.EqualValues(t, 0, afterFirst.ExpiresAt)
	assert.True(t, afterFirst.HasExpired(time.Now()))

	// Repeating the revocation must not change the store further.
	require.NoError(t, RevokeByType(db, model.PunishmentJail, "guild1", "user1"))
	records, err = ListCases(db, "guild1", "user1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, afterFirst, records[0])
}

func TestRevokeByTypeLeavesOtherTypesAlone(t *testing.T) {
	db := newTestDB(t)

	_, err := CreateCase(db, model.PunishmentJail, "guild1", "user1", "User One", "mod1", "Mod One", "", model.NeverExpires)
	require.NoError(t, err)
	_, err = CreateCase(db, model.PunishmentMute, "guild1", "user1", "User One", "mod1", "Mod One", "", model.NeverExpires)
	require.NoError(t, err)

	require.NoError(t, RevokeByType(db, model.PunishmentJail, "guild1", "user1"))

	active, err := ListActiveCases(db, "guild1", "user1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, model.PunishmentMute, active[0].Type)
}

func TestInvalidateWarningRejectsOtherTypes(t *testing.T) {
	db := newTestDB(t)

	record, err := CreateCase(db, model.PunishmentBan, "guild1", "user1", "User One", "mod1", "Mod One", "", model.NeverExpires)
	require.NoError(t, err)

	err = InvalidateWarning(db, "guild1", record.CaseID)
	assert.ErrorIs(t, err, ErrNotWarning)

	// The store must be unchanged.
	got, err := GetCase(db, "guild1", record.CaseID)
	require.NoError(t, err)
	assert.EqualValues(t, model.NeverExpires, got.ExpiresAt)
	assert.True(t, got.Visible)
}

func TestInvalidateWarningHidesFromCurrentQueries(t *testing.T) {
	db := newTestDB(t)

	record, err := CreateCase(db, model.PunishmentWarning, "guild1", "user1", "User One", "mod1", "Mod One", "w", model.NeverExpires)
	require.NoError(t, err)

	require.NoError(t, InvalidateWarning(db, "guild1", record.CaseID))

	warnings, err := ListWarnings(db, "guild1", "user1")
	require.NoError(t, err)
	assert.Empty(t, warnings)

	// The row survives for audit.
	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM cases WHERE case_id = ?`, record.CaseID))
	assert.Equal(t, 1, count)
}

func TestListActiveWarningsExcludesExpired(t *testing.T) {
	db := newTestDB(t)

	expired, err := CreateCase(db, model.PunishmentWarning, "guild1", "user1", "User One", "mod1", "Mod One", "old", model.NeverExpires)
	require.NoError(t, err)
	backdate(t, db, expired.CaseID, time.Now().Add(-time.Minute).Unix())

	_, err = CreateCase(db, model.PunishmentWarning, "guild1", "user1", "User One", "mod1", "Mod One", "new", time.Now().Add(time.Hour).Unix())
	require.NoError(t, err)

	warnings, err := ListWarnings(db, "guild1", "user1")
	require.NoError(t, err)
	assert.Len(t, warnings, 2)

	active, err := ListActiveWarnings(db, "guild1", "user1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "new", active[0].Reason)
}

func TestListActiveExpiringPunishments(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().Unix()

	permanent, err := CreateCase(db, model.PunishmentBan, "guild1", "user1", "User One", "mod1", "Mod One", "", model.NeverExpires)
	require.NoError(t, err)

	due, err := CreateCase(db, model.PunishmentMute, "guild1", "user2", "User Two", "mod1", "Mod One", "", time.Now().Add(time.Hour).Unix())
	require.NoError(t, err)
	backdate(t, db, due.CaseID, now-1)

	warning, err := CreateCase(db, model.PunishmentWarning, "guild1", "user3", "User Three", "mod1", "Mod One", "w", model.NeverExpires)
	require.NoError(t, err)
	backdate(t, db, warning.CaseID, now-1)

	revoked, err := CreateCase(db, model.PunishmentJail, "guild1", "user4", "User Four", "mod1", "Mod One", "", model.NeverExpires)
	require.NoError(t, err)
	require.NoError(t, RevokeByType(db, model.PunishmentJail, "guild1", "user4"))

	expiring, err := ListActiveExpiringPunishments(db, now)
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, due.CaseID, expiring[0].CaseID)

	// The never sentinel stays out no matter how far now advances.
	expiring, err = ListActiveExpiringPunishments(db, now+1<<32)
	require.NoError(t, err)
	for _, c := range expiring {
		assert.NotEqual(t, permanent.CaseID, c.CaseID)
		assert.NotEqual(t, revoked.CaseID, c.CaseID)
	}
}

func TestClaimForRevocationIsExclusive(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().Unix()

	due, err := CreateCase(db, model.PunishmentBan, "guild1", "user1", "User One", "mod1", "Mod One", "", time.Now().Add(time.Hour).Unix())
	require.NoError(t, err)
	backdate(t, db, due.CaseID, now-1)

	claimed, err := ClaimForRevocation(db, due.ID, now)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = ClaimForRevocation(db, due.ID, now)
	require.NoError(t, err)
	assert.False(t, claimed, "second claim must lose")
}

func TestClaimForRevocationSkipsReissuedPunishment(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().Unix()

	record, err := CreateCase(db, model.PunishmentBan, "guild1", "user1", "User One", "mod1", "Mod One", "", time.Now().Add(time.Hour).Unix())
	require.NoError(t, err)

	// Expiry still in the future: the conditional update must not fire.
	claimed, err := ClaimForRevocation(db, record.ID, now)
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestUpdateReason(t *testing.T) {
	db := newTestDB(t)

	record, err := CreateCase(db, model.PunishmentWarning, "guild1", "user1", "User One", "mod1", "Mod One", "old", model.NeverExpires)
	require.NoError(t, err)

	require.NoError(t, UpdateReason(db, "guild1", record.CaseID, "updated"))
	got, err := GetCase(db, "guild1", record.CaseID)
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Reason)

	err = UpdateReason(db, "guild1", "nosuch", "x")
	assert.ErrorIs(t, err, ErrCaseNotFound)
}

func TestIsCurrentlyPunished(t *testing.T) {
	db := newTestDB(t)

	_, err := CreateCase(db, model.PunishmentJail, "guild1", "user1", "User One", "mod1", "Mod One", "", model.NeverExpires)
	require.NoError(t, err)

	jailed, err := IsCurrentlyJailed(db, "guild1", "user1")
	require.NoError(t, err)
	assert.True(t, jailed)

	muted, err := IsCurrentlyMuted(db, "guild1", "user1")
	require.NoError(t, err)
	assert.False(t, muted)

	require.NoError(t, RevokeByType(db, model.PunishmentJail, "guild1", "user1"))
	jailed, err = IsCurrentlyJailed(db, "guild1", "user1")
	require.NoError(t, err)
	assert.False(t, jailed)
}

func TestBoundaryExpiryIsConsistentlyInactive(t *testing.T) {
	db := newTestDB(t)
	boundary := time.Now().Unix()

	record, err := CreateCase(db, model.PunishmentJail, "guild1", "user1", "User One", "mod1", "Mod One", "", time.Now().Add(time.Hour).Unix())
	require.NoError(t, err)
	backdate(t, db, record.CaseID, boundary)

	// A case expiring exactly now must agree across every "active" view:
	// expired, not listed as active, not currently punished.
	got, err := GetCase(db, "guild1", record.CaseID)
	require.NoError(t, err)
	assert.True(t, got.HasExpired(time.Unix(boundary, 0)))

	active, err := ListActiveCases(db, "guild1", "user1")
	require.NoError(t, err)
	assert.Empty(t, active)

	jailed, err := IsCurrentlyJailed(db, "guild1", "user1")
	require.NoError(t, err)
	assert.False(t, jailed)
}

func TestGetModerationStatistics(t *testing.T) {
	db := newTestDB(t)

	_, err := CreateCase(db, model.PunishmentWarning, "guild1", "user1", "User One", "mod1", "Mod One", "w", model.NeverExpires)
	require.NoError(t, err)
	_, err = CreateCase(db, model.PunishmentMute, "guild1", "user2", "User Two", "mod2", "Mod Two", "", model.NeverExpires)
	require.NoError(t, err)

	moderatorTotal, guildTotal, err := GetModerationStatistics(db, "guild1", "mod1")
	require.NoError(t, err)
	assert.Equal(t, 1, moderatorTotal)
	assert.Equal(t, 2, guildTotal)
}
