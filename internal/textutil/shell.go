package textutil

import "strings"

// safeShellChars are the bytes that never need quoting in a POSIX shell word.
const safeShellChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_@%+=:,./-"

var doubleQuoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`, "`", "\\`")

// ShellQuote returns s unchanged when it is a plain shell word, otherwise
// the double-quoted form.
func ShellQuote(s string) string {
	if s != "" && strings.Trim(s, safeShellChars) == "" {
		return s
	}
	return DoubleQuote(s)
}

// DoubleQuote wraps s in double quotes, escaping the characters the shell
// still expands inside them. Single quotes pass through so ffmpeg filter
// expressions such as enable='between(t,1,2)' keep their quoting.
func DoubleQuote(s string) string {
	return `"` + doubleQuoteEscaper.Replace(s) + `"`
}

// JoinCommand renders argv as one shell line, quoting each word as needed.
func JoinCommand(argv []string) string {
	words := make([]string, len(argv))
	for i, arg := range argv {
		words[i] = ShellQuote(arg)
	}
	return strings.Join(words, " ")
}
