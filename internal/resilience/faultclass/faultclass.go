// Package faultclass maps data-access failures onto the small taxonomy that decides
// whether a read may degrade to the next query tier or must reach the caller.
//
// Only ConnectivityFailure and SchemaMissing are fallback-eligible. NotFound,
// Unauthorized and Unknown always propagate unchanged.
package faultclass

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/sony/gobreaker"

	"portal-content/internal/domain/entity"
)

// Class is the outcome of classifying a failure.
type Class int

const (
	Unknown Class = iota
	ConnectivityFailure
	SchemaMissing
	NotFound
	Unauthorized
)

// String returns a stable label for logs and metrics.
func (c Class) String() string {
	switch c {
	case ConnectivityFailure:
		return "connectivity"
	case SchemaMissing:
		return "schema_missing"
	case NotFound:
		return "not_found"
	case Unauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// FallbackEligible reports whether the class authorizes trying the next tier.
func (c Class) FallbackEligible() bool {
	return c == ConnectivityFailure || c == SchemaMissing
}

// ErrSchemaMissing may be wrapped by stores that detect a missing relation on
// their own, such as the snapshot store when a kind is absent from the dataset.
var ErrSchemaMissing = errors.New("relation does not exist")

// SQLSTATE codes for missing relations, columns and schemas.
var schemaMissingCodes = map[string]struct{}{
	"42P01": {}, // undefined_table
	"42703": {}, // undefined_column
	"3F000": {}, // invalid_schema_name
	"42883": {}, // undefined_function
}

// SQLSTATE codes outside classes 08 and 28 that mean the server is unreachable.
var connectivityCodes = map[string]struct{}{
	"57P01": {}, // admin_shutdown
	"57P02": {}, // crash_shutdown
	"57P03": {}, // cannot_connect_now
	"53300": {}, // too_many_connections
}

// Classify maps err onto a Class. Rules are evaluated in order and the first match wins:
// schema missing, connectivity, not found, unauthorized, otherwise unknown.
func Classify(err error) Class {
	if err == nil {
		return Unknown
	}
	switch {
	case isSchemaMissing(err):
		return SchemaMissing
	case isConnectivity(err):
		return ConnectivityFailure
	case errors.Is(err, entity.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		return NotFound
	case errors.Is(err, entity.ErrUnauthorized):
		return Unauthorized
	default:
		return Unknown
	}
}

// IsFallbackEligible is shorthand for Classify(err).FallbackEligible().
func IsFallbackEligible(err error) bool {
	return Classify(err).FallbackEligible()
}

func isSchemaMissing(err error) bool {
	if errors.Is(err, ErrSchemaMissing) {
		return true
	}
	if code, ok := sqlState(err); ok {
		_, missing := schemaMissingCodes[code]
		return missing
	}
	// SQLite reports missing relations only through the message text.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such table") || strings.Contains(msg, "no such column")
}

func isConnectivity(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, gobreaker.ErrOpenState) ||
		errors.Is(err, gobreaker.ErrTooManyRequests) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) || pgconn.Timeout(err) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	if code, ok := sqlState(err); ok {
		if strings.HasPrefix(code, "08") || strings.HasPrefix(code, "28") {
			return true
		}
		_, down := connectivityCodes[code]
		return down
	}
	return false
}

// sqlState extracts the SQLSTATE code from pgx or lib/pq errors.
func sqlState(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), true
	}
	return "", false
}
