package domain

// FailureKind classifies why no HTTP response was obtained for a URL.
type FailureKind string

const (
	// FailureNone is used when an HTTP response was received.
	FailureNone FailureKind = ""
	// FailureTimeout indicates the request did not complete within its timeout.
	FailureTimeout FailureKind = "TIMEOUT"
	// FailureConnectionReset indicates the peer closed or reset the connection mid-request.
	FailureConnectionReset FailureKind = "CONNECTION_RESET"
	// FailureConnectionRefused indicates the remote host refused the connection.
	FailureConnectionRefused FailureKind = "CONNECTION_REFUSED"
	// FailureDNS indicates the host name could not be resolved.
	FailureDNS FailureKind = "DNS"
	// FailureTLS indicates the TLS handshake or certificate verification failed.
	FailureTLS FailureKind = "TLS"
	// FailureInvalidRedirect indicates a redirect pointed at an unparseable location.
	FailureInvalidRedirect FailureKind = "INVALID_REDIRECT"
	// FailureOther covers every other transport failure.
	FailureOther FailureKind = "OTHER"
)

// CheckResult is the outcome of checking a single URL.
type CheckResult struct {
	// URL equals the Loc of the sitemap entry that was checked.
	URL string `json:"url"`
	// StatusCode is the final HTTP status. Zero means no response was obtained.
	StatusCode int `json:"statusCode"`
	// Error describes the failure when StatusCode is zero.
	Error string `json:"error,omitempty"`
	// Failure classifies Error; it is FailureNone whenever StatusCode is non-zero.
	Failure FailureKind `json:"failure,omitempty"`
}

// Failed reports whether no HTTP response was obtained.
func (r CheckResult) Failed() bool {
	return r.StatusCode == 0
}

// StatusClass groups the status code into 2xx, 3xx, 4xx, 5xx, "error" for
// transport failures and "other" for anything else.
func (r CheckResult) StatusClass() string {
	code := r.StatusCode
	switch {
	case code == 0:
		return "error"
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500 && code < 600:
		return "5xx"
	default:
		return "other"
	}
}

// Report pairs a sitemap document with the check results of its URLs.
// Results[i] always belongs to Sitemap.URLs[i].
type Report struct {
	Sitemap Sitemap       `json:"sitemap"`
	Results []CheckResult `json:"results"`
}
