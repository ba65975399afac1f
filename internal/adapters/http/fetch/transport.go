package fetch

import (
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/okian/rewardscan/pkg/metrics"
)

const statusBadRequest = 400

// metricsTransport records every round trip in the fetch metrics.
type metricsTransport struct {
	next http.RoundTripper
}

func (t metricsTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(r)

	recErr := err
	if err == nil && resp.StatusCode >= statusBadRequest {
		recErr = fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	metrics.RecordFetch(targetOf(r), time.Since(start), recErr)
	return resp, err //nolint:wrapcheck // transports pass errors through untouched
}

// targetOf labels a request by what it fetches, keeping label cardinality
// independent of the hashed asset names.
func targetOf(r *http.Request) string {
	switch ext := strings.ToLower(path.Ext(r.URL.Path)); ext {
	case ".js":
		return "script"
	case ".json":
		return "json"
	default:
		return "page"
	}
}
