// Command batchenc generates and runs ffmpeg command files that cut
// source videos into two-pass VP9/Opus WebM encodes.
//
// Typical use:
//
//	batchenc generate                 # ask for cuts, write commands.txt
//	batchenc execute --file jobs.txt  # run a command file in order
//	batchenc run --cuts sheet.toml    # generate from a cut sheet and run
package main
