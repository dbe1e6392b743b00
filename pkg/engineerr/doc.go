// Package engineerr defines the four error kinds the engine's public
// contracts return (§7): invalid input, missing prerequisite, geometric
// failure, and resource failure. Every exported operation that can fail
// wraps its error in one of these kinds so callers can classify failures
// with errors.Is/errors.As without parsing messages.
//
// The core never logs (§7); these values are returned, not printed, by
// every package below this one.
package engineerr
