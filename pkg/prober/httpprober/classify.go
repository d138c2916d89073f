package httpprober

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"sitemapcheck/pkg/domain"
	"syscall"
)

// Classify maps a transport error to a domain.FailureKind by inspecting the
// error chain. It never looks at the error text.
func Classify(err error) domain.FailureKind {
	if err == nil {
		return domain.FailureNone
	}

	var (
		redirectErr *RedirectError
		netErr      net.Error
		dnsErr      *net.DNSError
	)

	switch {
	case errors.As(err, &redirectErr):
		return domain.FailureInvalidRedirect
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return domain.FailureTimeout
	case errors.As(err, &dnsErr):
		return domain.FailureDNS
	case errors.Is(err, syscall.ECONNREFUSED):
		return domain.FailureConnectionRefused
	case errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return domain.FailureConnectionReset
	case isTLS(err):
		return domain.FailureTLS
	default:
		return domain.FailureOther
	}
}

func isTLS(err error) bool {
	var (
		verifyErr    *tls.CertificateVerificationError
		recordErr    tls.RecordHeaderError
		alertErr     tls.AlertError
		authorityErr x509.UnknownAuthorityError
		hostnameErr  x509.HostnameError
		invalidErr   x509.CertificateInvalidError
	)

	return errors.As(err, &verifyErr) ||
		errors.As(err, &recordErr) ||
		errors.As(err, &alertErr) ||
		errors.As(err, &authorityErr) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidErr)
}
