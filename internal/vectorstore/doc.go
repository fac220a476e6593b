// Package vectorstore defines a database-agnostic abstraction for the
// vector-collection operations the memory connector needs.
//
// It allows the connector to switch between vector backends (a remote Qdrant
// server, the embedded chromem-go store) without changing application code:
// the connector talks to the Store interface, and each backend package
// converts the neutral types — points, scored results, equality filters —
// into its native representation.
//
// The package is deliberately dependency-free so that neither backend leaks
// into the other.
package vectorstore
