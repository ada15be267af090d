/*
Package domain contains the core models of the stepwise pipeline workbench.

It defines the entities a user composes into a text transformation pipeline and
the values exchanged between the Entity Store, the Scope Resolver, the Transform
Engine and the Reactive Scheduler. This package is kept pure and free of I/O or
persistence concerns, following Hexagonal Architecture principles.

# Key Entities

  - Step: A single transform unit holding user-authored code.
  - StepGroup: A named, ordered collection of Steps sharing one input text.
  - LibraryStep: A reusable template stamped out into fresh Steps on demand.
  - AppState: The persisted snapshot (groups, selections and library).
  - RunResult: The outcome of one pipeline execution.
*/
package domain
