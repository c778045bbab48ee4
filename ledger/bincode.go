package ledger

import (
	"fmt"
	"strings"
	"unicode"
)

const binCodePrefix = "TRASH_BIN_"

// NormalizeBinCode maps the many ways participants type or scan a bin code
// onto the canonical TRASH_BIN_NN form: case, separators, and zero padding are
// forgiven, and a bare number is treated as a bin sequence.
//
//	"trash-bin-02" -> "TRASH_BIN_02"
//	"TRASHBIN03"   -> "TRASH_BIN_03"
//	" 4 "          -> "TRASH_BIN_04"
//
// Input with no digits is returned cleaned (trimmed, uppercased, separators
// collapsed to underscores) so custom codes still match exactly.
func NormalizeBinCode(raw string) string {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	cleaned = strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return '_'
		}
		return r
	}, cleaned)

	digits := trailingDigits(cleaned)
	if digits == "" {
		return cleaned
	}
	if len(digits) < 2 {
		digits = fmt.Sprintf("%02s", digits)
	}
	return binCodePrefix + digits
}

func trailingDigits(s string) string {
	end := len(s)
	for end > 0 && !unicode.IsDigit(rune(s[end-1])) {
		end--
	}
	start := end
	for start > 0 && unicode.IsDigit(rune(s[start-1])) {
		start--
	}
	return s[start:end]
}
