package domain

import "errors"

var (
	// ErrQuoteUnavailable means the price source gave no usable price,
	// either after exhausting retries or because the payload was malformed.
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrUnknownPair means an operation code has no provider symbol.
	ErrUnknownPair = errors.New("unknown currency pair")

	// ErrStaleSession means an event arrived with no matching session,
	// e.g. after a restart mid-conversation.
	ErrStaleSession = errors.New("stale session")
)
