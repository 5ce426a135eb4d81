package services

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Sentinel errors surfaced by the waitlist lifecycle.
var (
	// ErrAlreadyWaitlisted indicates a non-terminal entry already exists for the email.
	ErrAlreadyWaitlisted = errors.New("waitlist: entry already queued for this email")
	// ErrInviteNotFound indicates no invited entry matches the provided token.
	ErrInviteNotFound = errors.New("waitlist: invite not found")
	// ErrInviteExpired indicates the invitation window has elapsed.
	ErrInviteExpired = errors.New("waitlist: invite expired")
	// ErrInviteConflict signals the entry changed state while being redeemed.
	ErrInviteConflict = errors.New("waitlist: invite state changed concurrently")
	// ErrProviderNotFound indicates no provider matches the identifier.
	ErrProviderNotFound = errors.New("provider: not found")
)

// isUniqueConstraintError detects database uniqueness constraint violations across vendors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique") ||
		strings.Contains(lower, "duplicate") ||
		strings.Contains(lower, "constraint")
}
