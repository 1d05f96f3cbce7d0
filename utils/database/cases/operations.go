package cases

import (
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"pidroid/model"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	// ErrStoreExhausted is returned when a unique case id could not be
	// allocated after the bounded number of attempts.
	ErrStoreExhausted = errors.New("unable to allocate a unique case id after 5 attempts")

	// ErrCaseNotFound is returned when no visible case matches the query.
	ErrCaseNotFound = errors.New("case not found")

	// ErrNotWarning is returned when invalidation is attempted on a case
	// that is not a warning.
	ErrNotWarning = errors.New("only warnings can be invalidated")
)

const (
	caseIDAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	caseIDLength   = 6
	caseIDAttempts = 5
)

// generateCaseID produces a cryptographically secure short identifier.
func generateCaseID() (string, error) {
	id := make([]byte, caseIDLength)
	for i := range id {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(caseIDAlphabet))))
		if err != nil {
			return "", fmt.Errorf("failed to generate case id: %w", err)
		}
		id[i] = caseIDAlphabet[n.Int64()]
	}
	return string(id), nil
}

// CreateCase writes a new punishment record and returns it. An expiresAt of
// model.NeverExpires marks a permanent punishment; any other value must not
// precede the issue time.
func CreateCase(db *sqlx.DB, kind model.PunishmentType, guildID, userID, userName, moderatorID, moderatorName, reason string, expiresAt int64) (*model.Case, error) {
	if !model.ValidPunishmentType(kind) {
		return nil, fmt.Errorf("unknown punishment type %q", kind)
	}

	record := model.Case{
		Type:          kind,
		GuildID:       guildID,
		UserID:        userID,
		UserName:      userName,
		ModeratorID:   moderatorID,
		ModeratorName: moderatorName,
		Reason:        reason,
		IssuedAt:      time.Now().Unix(),
		ExpiresAt:     expiresAt,
		Visible:       true,
	}
	if expiresAt != model.NeverExpires && expiresAt < record.IssuedAt {
		return nil, fmt.Errorf("expiry %d precedes issue time %d", expiresAt, record.IssuedAt)
	}

	query := `INSERT INTO cases (case_id, type, guild_id, user_id, user_name, moderator_id, moderator_name, reason, issued_at, expires_at, visible)
			  VALUES (:case_id, :type, :guild_id, :user_id, :user_name, :moderator_id, :moderator_name, :reason, :issued_at, :expires_at, :visible)`

	for attempt := 0; attempt < caseIDAttempts; attempt++ {
		caseID, err := generateCaseID()
		if err != nil {
			return nil, err
		}

		var exists bool
		if err := db.Get(&exists, `SELECT EXISTS (SELECT 1 FROM cases WHERE case_id = ?)`, caseID); err != nil {
			return nil, fmt.Errorf("failed to check case id uniqueness: %w", err)
		}
		if exists {
			continue
		}

		record.CaseID = caseID
		result, err := db.NamedExec(query, record)
		if err != nil {
			return nil, fmt.Errorf("failed to insert case record: %w", err)
		}
		record.ID, err = result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get last insert ID: %w", err)
		}
		return &record, nil
	}
	return nil, ErrStoreExhausted
}

// GetCase retrieves a single visible case by its public identifier.
func GetCase(db *sqlx.DB, guildID, caseID string) (*model.Case, error) {
	var record model.Case
	query := `SELECT * FROM cases WHERE guild_id = ? AND case_id = ? AND visible = 1`
	err := db.Get(&record, query, guildID, caseID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCaseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get case %s in guild %s: %w", caseID, guildID, err)
	}
	return &record, nil
}

// ListCases returns all visible cases for a user in a guild, newest first.
func ListCases(db *sqlx.DB, guildID, userID string) ([]model.Case, error) {
	var records []model.Case
	query := `SELECT * FROM cases WHERE guild_id = ? AND user_id = ? AND visible = 1 ORDER BY issued_at DESC, id DESC`
	if err := db.Select(&records, query, guildID, userID); err != nil {
		return nil, fmt.Errorf("failed to list cases for user %s in guild %s: %w", userID, guildID, err)
	}
	return records, nil
}

// ListActiveCases returns the subset of ListCases that has not expired.
func ListActiveCases(db *sqlx.DB, guildID, userID string) ([]model.Case, error) {
	var records []model.Case
	query := `SELECT * FROM cases WHERE guild_id = ? AND user_id = ? AND visible = 1
			  AND (expires_at = -1 OR expires_at > ?)
			  ORDER BY issued_at DESC, id DESC`
	if err := db.Select(&records, query, guildID, userID, time.Now().Unix()); err != nil {
		return nil, fmt.Errorf("failed to list active cases for user %s in guild %s: %w", userID, guildID, err)
	}
	return records, nil
}

// ListWarnings returns all visible warnings for a user, newest first.
func ListWarnings(db *sqlx.DB, guildID, userID string) ([]model.Case, error) {
	var records []model.Case
	query := `SELECT * FROM cases WHERE guild_id = ? AND user_id = ? AND type = 'warning' AND visible = 1 ORDER BY issued_at DESC, id DESC`
	if err := db.Select(&records, query, guildID, userID); err != nil {
		return nil, fmt.Errorf("failed to list warnings for user %s in guild %s: %w", userID, guildID, err)
	}
	return records, nil
}

// ListActiveWarnings returns the unexpired subset of ListWarnings.
func ListActiveWarnings(db *sqlx.DB, guildID, userID string) ([]model.Case, error) {
	var records []model.Case
	query := `SELECT * FROM cases WHERE guild_id = ? AND user_id = ? AND type = 'warning' AND visible = 1
			  AND (expires_at = -1 OR expires_at > ?)
			  ORDER BY issued_at DESC, id DESC`
	if err := db.Select(&records, query, guildID, userID, time.Now().Unix()); err != nil {
		return nil, fmt.Errorf("failed to list active warnings for user %s in guild %s: %w", userID, guildID, err)
	}
	return records, nil
}

// RevokeByType marks every visible, not-yet-revoked case of the given type
// for the user as already expired. Repeating the call has no further effect.
func RevokeByType(db *sqlx.DB, kind model.PunishmentType, guildID, userID string) error {
	query := `UPDATE cases SET expires_at = 0 WHERE type = ? AND guild_id = ? AND user_id = ? AND visible = 1 AND expires_at != 0`
	if _, err := db.Exec(query, kind, guildID, userID); err != nil {
		return fmt.Errorf("failed to revoke %s cases for user %s in guild %s: %w", kind, userID, guildID, err)
	}
	return nil
}

// InvalidateWarning soft-deletes a warning, hiding it from all current
// queries while keeping the row for audit.
func InvalidateWarning(db *sqlx.DB, guildID, caseID string) error {
	record, err := GetCase(db, guildID, caseID)
	if err != nil {
		return err
	}
	if record.Type != model.PunishmentWarning {
		return ErrNotWarning
	}
	query := `UPDATE cases SET visible = 0, expires_at = 0 WHERE id = ?`
	if _, err := db.Exec(query, record.ID); err != nil {
		return fmt.Errorf("failed to invalidate warning %s: %w", caseID, err)
	}
	return nil
}

// UpdateReason replaces the reason on a visible case.
func UpdateReason(db *sqlx.DB, guildID, caseID, reason string) error {
	result, err := db.Exec(`UPDATE cases SET reason = ? WHERE guild_id = ? AND case_id = ? AND visible = 1`, reason, guildID, caseID)
	if err != nil {
		return fmt.Errorf("failed to update reason for case %s: %w", caseID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for case %s: %w", caseID, err)
	}
	if affected == 0 {
		return ErrCaseNotFound
	}
	return nil
}

// ListActiveExpiringPunishments returns the cases due for revocation across
// all guilds: everything but warnings whose expiry is set and has passed.
// This is the reconciliation loop's primary read.
func ListActiveExpiringPunishments(db *sqlx.DB, now int64) ([]model.Case, error) {
	var records []model.Case
	query := `SELECT * FROM cases
			  WHERE type != 'warning' AND visible = 1
			  AND expires_at > 0 AND expires_at <= ?`
	if err := db.Select(&records, query, now); err != nil {
		return nil, fmt.Errorf("failed to list expiring punishments: %w", err)
	}
	return records, nil
}

// ClaimForRevocation atomically revokes a due case. It reports false when
// another writer got there first or when the expiry moved into the future in
// the meantime, which guards against revoking a punishment reissued between
// the expiry scan and this update.
func ClaimForRevocation(db *sqlx.DB, id int64, now int64) (bool, error) {
	result, err := db.Exec(`UPDATE cases SET expires_at = 0 WHERE id = ? AND visible = 1 AND expires_at > 0 AND expires_at <= ?`, id, now)
	if err != nil {
		return false, fmt.Errorf("failed to claim case %d for revocation: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected for case %d: %w", id, err)
	}
	return affected == 1, nil
}

// IsCurrentlyPunished reports whether the user has an unexpired, visible
// punishment of the given type.
func IsCurrentlyPunished(db *sqlx.DB, kind model.PunishmentType, guildID, userID string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM cases
			  WHERE type = ? AND guild_id = ? AND user_id = ? AND visible = 1
			  AND (expires_at = -1 OR expires_at > ?)`
	if err := db.Get(&count, query, kind, guildID, userID, time.Now().Unix()); err != nil {
		return false, fmt.Errorf("failed to check %s state for user %s in guild %s: %w", kind, userID, guildID, err)
	}
	return count > 0, nil
}

// IsCurrentlyJailed reports whether the user has an active jail case.
func IsCurrentlyJailed(db *sqlx.DB, guildID, userID string) (bool, error) {
	return IsCurrentlyPunished(db, model.PunishmentJail, guildID, userID)
}

// IsCurrentlyMuted reports whether the user has an active mute case.
func IsCurrentlyMuted(db *sqlx.DB, guildID, userID string) (bool, error) {
	return IsCurrentlyPunished(db, model.PunishmentMute, guildID, userID)
}

// GetModerationStatistics returns the number of visible cases issued by the
// moderator alongside the guild-wide total.
func GetModerationStatistics(db *sqlx.DB, guildID, moderatorID string) (moderatorTotal int, guildTotal int, err error) {
	if err = db.Get(&moderatorTotal, `SELECT COUNT(*) FROM cases WHERE guild_id = ? AND moderator_id = ? AND visible = 1`, guildID, moderatorID); err != nil {
		return 0, 0, fmt.Errorf("failed to count cases for moderator %s in guild %s: %w", moderatorID, guildID, err)
	}
	if err = db.Get(&guildTotal, `SELECT COUNT(*) FROM cases WHERE guild_id = ? AND visible = 1`, guildID); err != nil {
		return 0, 0, fmt.Errorf("failed to count cases for guild %s: %w", guildID, err)
	}
	return moderatorTotal, guildTotal, nil
}
