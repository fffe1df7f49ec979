package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RevokeToken records that the session with the given JTI has logged out.
// The row is kept until expiresAt, after which the token is rejected by its
// own expiry claim. Revoking twice is a no-op.
func RevokeToken(ctx context.Context, db *sql.DB, jti string, expiresAt time.Time) error {
	if _, err := db.ExecContext(ctx,
		`INSERT INTO revoked_tokens (jti, expires_at) VALUES (?, ?)
		 ON CONFLICT (jti) DO NOTHING`,
		jti, expiresAt.UTC(),
	); err != nil {
		return fmt.Errorf("revoking session %s: %w", jti, err)
	}
	return nil
}

// IsTokenRevoked reports whether the session with the given JTI was logged out.
func IsTokenRevoked(ctx context.Context, db *sql.DB, jti string) (bool, error) {
	var revoked bool
	if err := db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = ?)`, jti,
	).Scan(&revoked); err != nil {
		return false, fmt.Errorf("looking up session %s: %w", jti, err)
	}
	return revoked, nil
}

// PurgeExpiredTokens removes revocations whose tokens expired before now and
// returns how many were removed. The server calls it from its housekeeping
// loop.
func PurgeExpiredTokens(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at < ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("purging revoked sessions: %w", err)
	}
	return result.RowsAffected()
}
