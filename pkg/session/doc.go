/*
Package session manages live edit sessions over graphs.

Each session holds a head graph and an undo history, both persisted as
snapshots in a ports.SnapshotStore. Edits are applied copy-on-write under a
per-session lock, optionally backed by a ports.DistributedLocker so several
replicas can share one store.
*/
package session
