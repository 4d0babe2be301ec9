// Package workflow coordinates the conversion pipeline: probing sources,
// classifying them against the target profile, executing the planned ffmpeg
// work with one software retry, verifying artifacts, and walking batches.
package workflow
