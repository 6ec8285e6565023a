// Package log provides the slog setup used by log2test.
//
// Access logs are full of credentials that clients put in query strings:
// password reset tokens, session ids, signed download keys. The scanner
// logs request paths at debug level, so the SecureHandler masks them
// before they reach the output:
//   - attributes whose key names a secret (password, token, cookie, ...)
//   - values that look like secrets (JWTs, bearer/basic credentials)
//   - sensitive query parameters inside logged paths and URLs, both in
//     plain form (?token=abc) and form-urlencoded form (%3Ftoken%3Dabc)
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//	logger.Debug("path classified", "path", "/reset?token=abc")
//	// path=/reset?token=***REDACTED***
package log
