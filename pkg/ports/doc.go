/*
Package ports defines the driven ports (interfaces) of the cascade engine.

These interfaces decouple the core loop from the reaction dataset and from
result persistence, so the same engine runs against SQLite, an in-memory
fixture, Redis or nothing at all.

# Key Interfaces

  - ReactionSource: Batch reaction lookups and nuclide classification (read-only).
  - ReactionBrowser: Optional browsing lookups (fission, reactions of one nuclide).
  - ResultStore: Persists run results keyed by run ID.
*/
package ports
