// Package preview keeps a generated site fresh while it is being served:
// a filesystem watcher with debounced, coalesced rebuilds, a periodic
// refresh scheduler for remote sources, and the HTTP server that serves the
// output directory.
package preview
