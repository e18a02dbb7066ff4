// Package source opens a media file for cutting: one ffprobe call, stream
// selection, and the audio bitrate lookup that may need a short-lived
// demuxed copy of the audio stream.
//
// A Descriptor is immutable once Open returns it. Stream indices are
// per-type ordinals as used by ffmpeg's 0:v:N and 0:a:N selectors.
package source
