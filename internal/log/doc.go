// Package log provides secure logging built on the standard slog package.
//
// The SecureHandler masks attribute values before they reach the wrapped
// handler:
//   - credentials for external services (api_key, token, authorization)
//   - WHOIS contact data (email, phone, fax) that registries return for
//     natural persons
//   - values that look like tokens, e-mail addresses or WHOIS phone numbers,
//     whatever their key
//
// Even in verbose mode, masked values never reach the output.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Warn("dependency fetch failed",
//	    "address", "example.com",
//	    "email", "hostmaster@example.com", // logged as ***REDACTED***
//	)
//	slog.SetDefault(logger)
package log
