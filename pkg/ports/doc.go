/*
Package ports defines the driven ports (interfaces) of the cardflow engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to work with various storage backends, card catalogs and transports.

# Key Interfaces

  - GraphService: the engine surface consumed by the HTTP and MCP adapters.
  - CardSource: loads card descriptors (e.g., from Loam or Memory).
  - SnapshotStore: persists graph snapshots for edit sessions.
  - DistributedLocker: provides distributed locking for concurrent session access.
*/
package ports
