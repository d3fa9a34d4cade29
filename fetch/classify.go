package fetch

import (
	"bytes"
	"net/http"
	"strings"
)

// verdict classifies one attempt's HTTP response.
type verdict int

const (
	// verdictSuccess: success status and a plausible body.
	verdictSuccess verdict = iota
	// verdictBlocked: soft-block status or a challenge marker in the body.
	verdictBlocked
	// verdictImplausible: success status, but the body looks like
	// disguised blocking (too small or missing the site marker).
	verdictImplausible
	// verdictHTTPError: any other error status.
	verdictHTTPError
)

func (v verdict) String() string {
	switch v {
	case verdictSuccess:
		return "success"
	case verdictBlocked:
		return "blocked"
	case verdictImplausible:
		return "implausible"
	default:
		return "http_error"
	}
}

var challengeMarker = []byte("captcha")

// classify applies the status-code check and the content-plausibility
// check. A success outcome requires both: anything else is blocked or
// retried. The 200-with-mid-size-body case is deliberately heuristic;
// a sparse but legitimate page is classified implausible and retried.
func classify(statusCode int, body []byte, marker string, minBodyBytes int) verdict {
	// Soft-block statuses used by anti-automation layers.
	if statusCode == http.StatusAccepted || statusCode == http.StatusServiceUnavailable {
		return verdictBlocked
	}
	if bytes.Contains(bytes.ToLower(body), challengeMarker) {
		return verdictBlocked
	}
	if statusCode < 200 || statusCode > 299 {
		return verdictHTTPError
	}
	if len(body) < minBodyBytes {
		return verdictImplausible
	}
	if marker != "" && !strings.Contains(strings.ToLower(string(body)), strings.ToLower(marker)) {
		return verdictImplausible
	}
	return verdictSuccess
}
