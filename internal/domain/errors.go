package domain

import "errors"

var (
	// ErrUnknownMeter marks an ingest entry whose meterId is outside the
	// four fixed slots. The entry is skipped; the batch continues.
	ErrUnknownMeter = errors.New("unknown meter id")

	// ErrInvalidPayload rejects a malformed gateway push before any
	// state is mutated.
	ErrInvalidPayload = errors.New("invalid payload: expected {meters: []}")

	// ErrNoMeters signals evaluation against an empty store, e.g. a read
	// arriving before initialization has seeded the meter rows.
	ErrNoMeters = errors.New("no meters found")
)
