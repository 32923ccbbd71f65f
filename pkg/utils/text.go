package utils

// TruncateString shortens s to maxLen characters, appending "..." when
// truncated. The cut falls on a rune boundary so multi-byte text stays valid
// UTF-8.
func TruncateString(s string, maxLen int) string {
	count := 0
	for i := range s {
		if count == maxLen {
			return s[:i] + "..."
		}
		count++
	}
	return s
}
