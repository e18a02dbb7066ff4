package textutil

import "strings"

// SplitList splits s on sep and trims every element. Blank input yields an
// empty list; blank elements inside a longer list are kept so positions line
// up with sibling lists.
func SplitList(s, sep string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// SplitInputs splits values that may use the ",," separator (paths may
// contain single commas) and drops blanks.
func SplitInputs(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",,") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
