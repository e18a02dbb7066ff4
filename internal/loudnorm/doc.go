// Package loudnorm measures the loudness of a cut with ffmpeg's loudnorm
// filter and renders the measured filter used by the second encode pass.
//
// Measurement is the only step that decodes audio before the encode
// commands exist, so it runs once per cut and its failure fails only that
// cut.
package loudnorm
