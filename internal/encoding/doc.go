// Package encoding turns compatibility verdicts into ffmpeg invocations:
// strategy planning, hardware encoder detection, argument construction,
// progress parsing, and process-group execution.
package encoding
