/*
Package domain contains the core domain models of the cascade engine.

It defines nuclide identifiers, the closed set of reactions a cascade can admit,
run parameters, results and the events emitted while a run progresses. This
package is kept pure and free of I/O and persistence concerns.

# Key Entities

  - Nuclide: An (element symbol, mass number) pair. Comparable, usable as a map key.
  - Reaction: A sum type over Fusion (2 -> 1) and TwoToTwo (2 -> 2).
  - Parameters: Everything a run needs, with defaults centralised in DefaultParameters.
  - Result: The immutable outcome of a run, including partial outcomes.
  - Update: One message on a run's update stream (progress or final).
*/
package domain
