/*
Package ports defines the driven ports (interfaces) of the stepwise core.

These interfaces decouple the pipeline logic from external implementations,
allowing the workbench to run against various storage backends, script engines
and library sources.

# Key Interfaces

  - KVStore: A byte-oriented key-value store (memory, file, SQLite, Redis).
  - StateRepository: Loads and saves the persisted application envelope.
  - StepEvaluator: Runs one step's code against the current text value.
  - LibraryPack: Imports and exports library steps from an external collection.
*/
package ports
