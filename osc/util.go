package osc

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// PrintMessage pretty prints a Message to standard output.
func PrintMessage(msg *Message) {
	fmt.Println(msg)
}

// bufPool holds receive buffers sized for the largest possible datagram.
var bufPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, MaxPacketSize)
		return &b
	},
}

// getRegEx compiles a regular expression for the given OSC address pattern,
// translating the OSC wildcards '*', '?', '[]' and '{,}'.
func getRegEx(pattern string) (*regexp.Regexp, error) {
	r := strings.NewReplacer(
		".", `\.`, // Escape all '.' in the pattern
		"(", `\(`, // Escape all '(' in the pattern
		")", `\)`, // Escape all ')' in the pattern
		"*", ".*", // '*' matches zero or more characters
		"{", "(", // '{a,b}' becomes the alternation '(a|b)'
		",", "|",
		"}", ")",
		"?", ".", // '?' matches any single character
		"!", "^", // '[!a]' negates a character class
	)
	return regexp.Compile("^" + r.Replace(pattern) + "$")
}
