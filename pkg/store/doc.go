// Package store persists entities and their fact lists in SQLite.
//
// The evaluation engine never touches storage: it receives immutable
// fact snapshots per call. This package is the persistence collaborator
// for hosts that keep entities in a database rather than in files.
// Facts keep their declaration order; the seq column is the order the
// engine sees.
package store
