// Package postgres implements the primary data path over pgx.
package postgres

import (
	"github.com/arbenl/ecohubkosova-sub002/internal/db"
	"github.com/arbenl/ecohubkosova-sub002/internal/observability"
)

type base struct {
	db   *db.Pool
	prom *observability.Prom
}

// observe records op latency/error class when metrics are wired.
func (b base) observe(op string, fn func() error) error {
	if b.prom == nil {
		return fn()
	}
	return b.prom.ObserveDB(op, fn)
}
