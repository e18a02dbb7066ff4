// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: per-stream properties, including the color tags and channel
//     layout used for colorspace and resampling decisions
//   - Format: container-level metadata (duration, size, bitrate)
//
// Inspect runs ffprobe once per path; Parse decodes a payload obtained
// elsewhere. Stream ordinals (0:v:N, 0:a:N) are positions within
// VideoStreams and AudioStreams, not the container-wide index.
package ffprobe
