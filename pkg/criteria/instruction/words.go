package instruction

import (
	"unicode"
)

// SplitWords segments a camel-case identifier. A word boundary falls between a
// lowercase letter or digit and a following uppercase letter:
//
//	SplitWords("getOneByNameAndCity") // [get One By Name And City]
//	SplitWords("getByIPAddress")      // [get By IPAddress]
func SplitWords(name string) []string {
	if name == "" {
		return nil
	}
	runes := []rune(name)
	var words []string
	start := 0
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		if unicode.IsUpper(cur) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	return append(words, string(runes[start:]))
}

func lowerFirst(word string) string {
	if word == "" {
		return word
	}
	runes := []rune(word)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}
