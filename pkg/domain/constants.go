package domain

import "time"

const (
	// SchemaVersion is the only persisted envelope version currently accepted.
	SchemaVersion = 1

	// DefaultStepCode is the identity transform given to new steps.
	DefaultStepCode = "return input;"

	// DefaultStorageKey is the key-value key holding the persisted envelope.
	DefaultStorageKey = "stepwise:state"

	// DefaultDebounce is the quiescence window of the Reactive Scheduler.
	DefaultDebounce = 50 * time.Millisecond
)
