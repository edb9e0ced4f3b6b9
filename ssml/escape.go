package ssml

import (
	"io"
	"strconv"
	"strings"
)

var ssmlEscaper = strings.NewReplacer(
	`"`, "&quot;",
	`&`, "&amp;",
	`'`, "&apos;",
	`<`, "&lt;",
	`>`, "&gt;",
)

// EscapeString replaces the five XML special characters in s with their
// named entities. Any other character is left as is.
func EscapeString(s string) string {
	return ssmlEscaper.Replace(s)
}

func writeEscaped(w io.Writer, s string) error {
	_, err := ssmlEscaper.WriteString(w, s)
	return err
}

// Percent formats n as a percentage value, e.g. "84%".
func Percent(n int) string {
	return strconv.Itoa(n) + "%"
}

// SignedPercent formats n as a relative percentage that always carries its
// sign, e.g. "+6%" or "-33%".
func SignedPercent(n int) string {
	if n < 0 {
		return strconv.Itoa(n) + "%"
	}
	return "+" + strconv.Itoa(n) + "%"
}
