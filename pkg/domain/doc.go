/*
Package domain contains the core data model shared by every cardflow package.

It defines the descriptors a card exposes to the outside world (ports, parameters,
signature, metadata), the read-only execution context handed to every process call,
the versioned state a host threads between calls, and the erased Card contract that
graphs, the compiler and the runner operate on. This package is kept free of I/O and
third-party dependencies.

# Key Entities

  - Port / PortType: a named, typed input or output slot.
  - Parameter: a tunable value with range, options and default.
  - CardSignature: the ordered inputs, outputs and parameters of a card.
  - CardMeta: identity and catalog information (id, category, version, side effects).
  - CardContext: transport, tick and engine information for one process call.
  - CardState: a value plus a version that increments by one per update.
  - Card / Result: the type-erased card contract and its result.
  - ValidationResult: structural findings produced by graph validation.
*/
package domain
