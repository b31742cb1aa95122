// Package email derives presentable display names from contact email
// addresses. Complaints carry no citizen profile, so read views fall back to
// the submitted address for a name.
package email

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// fallbackName is served when an address yields no usable words.
const fallbackName = "Citizen"

// DisplayName builds a "Kasun Perera" style name from the local part of an
// email address. Dots, underscores, hyphens and plus signs split words and
// each word is capitalized; input without usable words maps to a generic
// fallback instead of leaking the raw address.
func DisplayName(addr string) string {
	local := addr
	if at := strings.IndexByte(addr, '@'); at >= 0 {
		local = addr[:at]
	}

	words := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(words) == 0 {
		return fallbackName
	}

	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

func capitalize(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError {
		return w
	}
	return string(unicode.ToUpper(r)) + w[size:]
}
