// Package source loads entity definitions from YAML files.
//
// An entity file holds the entity's name, owner, ordered fact list, and
// optional stored permission defaults. A FileSource loads one file or a
// directory of files; a Watcher reloads on change with debouncing so an
// editor save storm triggers one reload, not ten.
//
// The engine never reads files itself: it receives fact snapshots. This
// package is one provider of those snapshots; pkg/store is another.
package source
