// Package schema defines the persisted envelope of the workbench and the
// version-keyed migration that turns any stored payload into a fully defaulted
// domain.AppState.
//
// Validation uses a small type system (string, int, bool, array, nullable and
// optional wrappers). Schemas map field names to types:
//
//	s := schema.Schema{
//	    "version":         schema.Int(),
//	    "selectedGroupId": schema.Optional(schema.Nullable(schema.String())),
//	}
//
//	if err := schema.Validate(s, data); err != nil {
//	    // err is an *AggregateError listing every failing field
//	}
//
// Decode never trusts a payload partially at the top level: a wrong version or
// an invalid top-level shape is an error, and callers fall back to the empty
// state. Nested collections are more forgiving: a malformed array becomes an
// empty array and a malformed item inside an array is dropped.
package schema
