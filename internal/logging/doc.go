// Package logging wires log/slog with the console and JSON handlers used
// across the pipeline, plus attr and context helpers so stage code logs
// consistent item/stage/correlation fields.
package logging
