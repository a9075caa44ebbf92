package export

import (
	"fmt"
	"regexp"
	"strings"
)

// invalidSheetChars are the characters xlsx forbids in sheet names.
var invalidSheetChars = regexp.MustCompile(`[\\/*?:\[\]]`)

// maxSheetNameLen is the xlsx sheet name limit.
const maxSheetNameLen = 31

// SanitizeSheetName turns a category name into a valid, unique sheet
// name: invalid characters become underscores, the result is trimmed
// to the xlsx length limit, and collisions get a numeric suffix. The
// chosen name is recorded in used.
func SanitizeSheetName(raw, fallback string, used map[string]bool) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		name = strings.TrimSpace(fallback)
	}
	if name == "" {
		name = "Sheet"
	}

	name = invalidSheetChars.ReplaceAllString(name, "_")
	if len(name) > maxSheetNameLen {
		name = name[:maxSheetNameLen]
	}

	base := name
	suffix := 1
	for used[name] {
		trimmed := base
		if len(trimmed) > maxSheetNameLen-3 {
			trimmed = trimmed[:maxSheetNameLen-3]
		}
		name = fmt.Sprintf("%s_%d", trimmed, suffix)
		suffix++
	}

	used[name] = true
	return name
}
