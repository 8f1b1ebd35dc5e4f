// Package log provides secure logging built on top of the standard slog package.
//
// Every logger returned by this package wraps its handler in a SecureHandler,
// which:
//   - masks attributes whose key names a credential (api_key, password, token)
//   - masks values that look like secrets (Anthropic keys, JWTs, bearer tokens)
//   - strips the password from connection strings, in attributes, errors and
//     messages alike
//
// Ingestion runs log one JSON object per line by default:
//
//	logger := log.NewLogger(os.Stderr, verbose, "json")
//	logger.Info("domain classified", "domain", "example.com", "content_type", "blog")
//
// The text format is intended for interactive use.
package log
