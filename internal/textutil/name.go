package textutil

import (
	"path/filepath"
	"strings"
	"unicode"
)

// SlugName derives an output name from a file name: the extension is
// dropped and every run of characters other than ASCII letters and digits
// becomes one hyphen.
func SlugName(file string) string {
	base := strings.TrimSuffix(file, filepath.Ext(file))
	var b strings.Builder
	hyphen := false
	for _, r := range base {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			hyphen = false
			continue
		}
		if !hyphen && b.Len() > 0 {
			b.WriteByte('-')
			hyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
