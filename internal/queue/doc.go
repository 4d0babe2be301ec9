// Package queue persists per-file conversion state in SQLite so that run
// outcomes survive interruption and remain inspectable afterwards.
package queue
