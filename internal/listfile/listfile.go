// Package listfile parses and renders plain-text account lists: one account
// number per line, blank lines and #-comments ignored.
package listfile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ggyhrr/gift-code/internal/roster"
)

var accountPattern = regexp.MustCompile(`^[a-zA-Z0-9_\-@.]+$`)

// Parse extracts account numbers from raw text, dropping blank lines and
// comment lines.
func Parse(text string) []string {
	var numbers []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		numbers = append(numbers, line)
	}
	return numbers
}

// ValidFormat reports whether s looks like an account number.
func ValidFormat(s string) bool {
	return len(s) >= 3 && len(s) <= 50 && accountPattern.MatchString(s)
}

// Split partitions a parsed list into well-formed numbers, malformed ones
// and duplicates (first occurrence wins).
func Split(numbers []string) (valid, invalid, duplicates []string) {
	seen := make(map[string]struct{})
	for _, n := range numbers {
		if _, ok := seen[n]; ok {
			duplicates = append(duplicates, n)
			continue
		}
		seen[n] = struct{}{}
		if ValidFormat(n) {
			valid = append(valid, n)
		} else {
			invalid = append(invalid, n)
		}
	}
	return valid, invalid, duplicates
}

// Export renders the roster as an importable text list. With withStatus set,
// each line also carries the validation mark and the player nickname.
func Export(accounts []roster.Account, withStatus bool) string {
	lines := make([]string, 0, len(accounts))
	for _, acc := range accounts {
		if !withStatus {
			lines = append(lines, acc.AccountNumber)
			continue
		}
		mark := "✗"
		if acc.Validated {
			mark = "✓"
		}
		name := "Unknown"
		if acc.Profile != nil && acc.Profile.Nickname != "" {
			name = acc.Profile.Nickname
		}
		lines = append(lines, fmt.Sprintf("%s [%s] %s", acc.AccountNumber, mark, name))
	}
	return strings.Join(lines, "\n")
}
