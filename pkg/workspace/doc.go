// Package workspace implements the entity store: step groups, the steps they
// own, and the reusable step library.
//
// All operations are synchronous and leave the state unchanged when they
// return an error. Out-of-range moves are not errors; they return the
// sequence untouched.
package workspace
