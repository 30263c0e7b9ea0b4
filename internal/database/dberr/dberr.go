// Package dberr классифицирует ошибки драйверов Postgres (lib/pq и pgx):
// сетевые и "временные" ошибки становятся domain.ErrTransientIO.
package dberr

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/GoArmGo/ArtMarket/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Wrap добавляет контекст к ошибке драйвера и помечает временные ошибки.
func Wrap(msg string, err error) error {
	if IsTransient(err) {
		return fmt.Errorf("%s: %w: %v", msg, domain.ErrTransientIO, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// IsTransient сообщает, имеет ли смысл повторить запрос позже.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return transientCode(string(pqErr.Code))
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return transientCode(pgErr.Code)
	}
	return false
}

func transientCode(code string) bool {
	if len(code) != 5 {
		return false
	}
	switch code[:2] {
	// connection_exception, insufficient_resources, operator_intervention
	case "08", "53", "57":
		return true
	}
	// serialization_failure, deadlock_detected
	return code == "40001" || code == "40P01"
}
