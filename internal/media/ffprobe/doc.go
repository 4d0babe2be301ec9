// Package ffprobe runs ffprobe against media files and exposes the parsed
// stream and container metadata that downstream classification needs.
package ffprobe
