// Package audio ranks the audio streams of a source so the stream menu can
// offer a sensible default.
//
// Streams in the most preferred language win. Within that group the track
// with the most channels is chosen, lossless codecs beat lossy ones, and
// ties go to the earlier stream.
package audio
