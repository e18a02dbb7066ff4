// Package cutsheet loads TOML cut sheets: the non-interactive answer to the
// cut list, stream and per-cut option questions for a batch of source
// files.
//
//	[[source]]
//	path = "show.mkv"
//	audio_stream = "1"
//
//	[[source.cut]]
//	start = "0:10"
//	end = "1:40"
//	name = "Show-OP1"
//	audio_filter = "afade=d=2:curve=exp"
//	options = { modes = ["VBR"], crfs = [20], filters = ["No Filters", "filtered"] }
package cutsheet
