package domain

import "errors"

// ErrNotFound is returned by key-value stores when a key does not exist.
var ErrNotFound = errors.New("key not found")

// ErrGroupNotFound is returned when a group id cannot be found.
var ErrGroupNotFound = errors.New("group not found")

// ErrStepNotFound is returned when a step id cannot be found in the active group.
var ErrStepNotFound = errors.New("step not found")

// ErrLibraryStepNotFound is returned when a library step id cannot be found.
var ErrLibraryStepNotFound = errors.New("library step not found")

// ErrNoActiveGroup is returned by step operations when no group is selected.
var ErrNoActiveGroup = errors.New("no active group")

// ErrInvalidScope is returned when a scope name is not one of all, from, to.
var ErrInvalidScope = errors.New("invalid scope")
