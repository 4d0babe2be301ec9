// Package compat classifies probed media against a direct-play target
// profile and reports exactly which properties prevent stream copying.
package compat
