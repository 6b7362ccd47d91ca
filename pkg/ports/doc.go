/*
Package ports defines the driven ports (interfaces) for the triage engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to work with various tree sources, session stores and doctor listings.

# Key Interfaces

  - TreeLoader: Responsible for loading Node definitions (e.g., from Loam, YAML or Memory).
  - RuleLoader: Supplies the ordered classifier rule table.
  - StateStore: Responsible for persisting and loading session State.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
  - DoctorDirectory: Resolves a Recommendation into a list of doctors.
*/
package ports
