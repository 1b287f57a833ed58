package common

import "errors"

var (
	ErrChannelRange = errors.New("color channel out of range")
	ErrChannelCount = errors.New("not enough color channels")
)

// IsValidTag checks that s looks like a country tag: 2-4 ASCII letters or digits
func IsValidTag(s string) bool {
	return len(s) >= 2 && len(s) <= 4 && IsAlnumToken(s)
}

// IsAlnumToken reports whether s is a non-empty run of ASCII letters and digits
func IsAlnumToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isAlnum(s[i]) {
			return false
		}
	}
	return true
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
