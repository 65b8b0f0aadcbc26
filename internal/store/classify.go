package store

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"

	"github.com/arbenl/ecohubkosova-sub002/internal/db"
	"github.com/jackc/pgx/v5/pgconn"
)

// infraMarkers are the documented substrings that identify an infrastructure
// failure of a data path (connection loss, pooler recycling, backend auth).
// Matching on them is deliberate: the behavior is specified this way even
// though it can also absorb genuine outages.
var infraMarkers = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"server closed the connection",
	"closed pool",
	"pooler",
	"tenant or user not found",
	"sasl",
	"password authentication failed",
	"too many connections",
	"timeout",
	"no such host",
}

// IsInfrastructure reports whether err is a transient/connectivity failure
// that justifies the REST fallback (or a retry). Context cancellation is
// never infrastructure: a preempted request must not trigger a fallback.
func IsInfrastructure(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) {
		return false
	}

	if errors.Is(err, db.ErrConnectExhausted) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// class 08 = connection exceptions, class 28 = invalid authorization
		if strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "28") {
			return true
		}
		switch pgErr.Code {
		case "57P01", "57P02", "57P03", "53300":
			// admin shutdown / crash shutdown / cannot connect now / too many connections
			return true
		}
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var restErr *RESTError
	if errors.As(err, &restErr) {
		return restErr.Status >= 500
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range infraMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}

	return false
}

// RESTError is a non-2xx response from the REST data path.
type RESTError struct {
	Status int
	Body   string
}

func (e *RESTError) Error() string {
	return "rest store: status " + strconv.Itoa(e.Status) + ": " + e.Body
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
