package view

import (
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

const ellipsis = "..."

const markdownSpecials = "_*`["

// Truncate keeps the first n characters of s, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + ellipsis
}

// FormatNumber renders n with thousands separators.
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// EscapeMarkdown escapes s for use outside of markup entities.
func EscapeMarkdown(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(markdownSpecials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// bold wraps s in bold markup. Escapes are not allowed inside an entity,
// so special characters close the entity, get escaped and reopen it.
func bold(s string) string {
	var b, run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			b.WriteString("*" + run.String() + "*")
			run.Reset()
		}
	}
	for _, r := range s {
		if strings.ContainsRune(markdownSpecials, r) {
			flush()
			b.WriteByte('\\')
			b.WriteRune(r)
			continue
		}
		run.WriteRune(r)
	}
	flush()
	return b.String()
}

var linkURLReplacer = strings.NewReplacer("(", "%28", ")", "%29", " ", "%20")

// linkURL percent-encodes the characters that end a markup link target.
func linkURL(u string) string {
	return linkURLReplacer.Replace(u)
}

func join(list []string, limit int) string {
	if len(list) > limit {
		list = list[:limit]
	}
	return EscapeMarkdown(strings.Join(list, ", "))
}
