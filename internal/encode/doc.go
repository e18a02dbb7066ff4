// Package encode derives the ffmpeg command lines for one validated cut:
// an optional preview, then for every configured rate-control mode a VP9
// first pass followed by one second pass per video filter.
//
// Settings carries the encoding profile and can be cloned for per-cut
// overrides. Builder holds the values derived once per cut (keyframe
// interval, bitrate tiers, colorspace, audio chain) and renders the
// commands in a fixed order, so identical inputs always produce identical
// command lists.
package encode
