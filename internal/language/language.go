package language

import "strings"

type entry struct {
	code2   string
	code3   []string
	display string
	word    string
}

var languages = []entry{
	{"en", []string{"eng"}, "English", "english"},
	{"es", []string{"spa"}, "Spanish", "spanish"},
	{"fr", []string{"fra", "fre"}, "French", "french"},
	{"de", []string{"deu", "ger"}, "German", "german"},
	{"it", []string{"ita"}, "Italian", "italian"},
	{"pt", []string{"por"}, "Portuguese", "portuguese"},
	{"ja", []string{"jpn"}, "Japanese", "japanese"},
	{"ko", []string{"kor"}, "Korean", "korean"},
	{"zh", []string{"zho", "chi"}, "Chinese", "chinese"},
	{"ru", []string{"rus"}, "Russian", "russian"},
	{"ar", []string{"ara"}, "Arabic", "arabic"},
	{"hi", []string{"hin"}, "Hindi", "hindi"},
	{"nl", []string{"nld", "dut"}, "Dutch", "dutch"},
	{"pl", []string{"pol"}, "Polish", "polish"},
	{"sv", []string{"swe"}, "Swedish", "swedish"},
	{"da", []string{"dan"}, "Danish", "danish"},
	{"no", []string{"nor"}, "Norwegian", "norwegian"},
	{"fi", []string{"fin"}, "Finnish", "finnish"},
}

var index = func() map[string]*entry {
	m := make(map[string]*entry, len(languages)*4)
	for i := range languages {
		e := &languages[i]
		m[e.code2] = e
		m[e.word] = e
		for _, c := range e.code3 {
			m[c] = e
		}
	}
	return m
}()

// clean lower-cases a tag and drops a region suffix ("en-US" -> "en").
func clean(code string) string {
	code = strings.ToLower(strings.TrimSpace(strings.ReplaceAll(code, "\u0000", "")))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	return code
}

// Normalize maps a two- or three-letter code or an English language name to
// its ISO 639-1 code. Unknown two-letter codes pass through; anything else
// unknown yields "".
func Normalize(code string) string {
	code = clean(code)
	if e, ok := index[code]; ok {
		return e.code2
	}
	if len(code) == 2 {
		return code
	}
	return ""
}

// DisplayName returns the English name for code, "Unknown" for an empty
// tag, or the upper-cased tag when it is not recognized.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	if e, ok := index[clean(code)]; ok {
		return e.display
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeList normalizes codes, dropping blanks, unknown values and
// duplicates while keeping the first-seen order.
func NormalizeList(codes []string) []string {
	if len(codes) == 0 {
		return nil
	}
	out := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		n := Normalize(code)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Rank returns the position of code in preferred (already normalized), or
// -1 when it is absent.
func Rank(code string, preferred []string) int {
	n := Normalize(code)
	if n == "" {
		return -1
	}
	for i, p := range preferred {
		if p == n {
			return i
		}
	}
	return -1
}
