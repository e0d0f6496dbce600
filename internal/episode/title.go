package episode

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	forbiddenChars = regexp.MustCompile(`[\\/:*?"<>|]`)
	trailingSpace  = regexp.MustCompile(`\s+$`)

	numberedDup      = regexp.MustCompile(`^(\d+)\s+第(\d+)话`)
	numberedDupStrip = regexp.MustCompile(`^\d+\s+(第\d+话)`)
	specialDup       = regexp.MustCompile(`^特别篇\s+特别篇`)
	leadingNumEp     = regexp.MustCompile(`^[0-9\-]+话`)
	leadingNum       = regexp.MustCompile(`^([0-9\-]+)`)
)

// SanitizeName makes s safe to use as a filesystem name: forbidden
// characters become spaces, trailing whitespace is trimmed, and literal
// dots become full-width middle dots so a title can never grow an
// accidental file extension.
func SanitizeName(s string) string {
	s = forbiddenChars.ReplaceAllString(s, " ")
	s = trailingSpace.ReplaceAllString(s, "")
	return strings.ReplaceAll(s, ".", "·")
}

// NormalizeTitle derives an episode's display title from the listing's
// short and long titles. Pure and total: same input always yields the same
// output, and the result is a fixed point of the function itself, which the
// idempotency check depends on.
func NormalizeTitle(short, long string) string {
	short = SanitizeName(short)
	long = SanitizeName(long)

	var title string
	if short == long || long == "" {
		title = short
	} else {
		title = short + " " + long
	}

	// "12 第12话 ..." carries its number twice; keep the 第N话 form.
	if m := numberedDup.FindStringSubmatch(title); m != nil {
		a, errA := strconv.Atoi(m[1])
		b, errB := strconv.Atoi(m[2])
		if errA == nil && errB == nil && a == b {
			title = numberedDupStrip.ReplaceAllString(title, "${1}")
		}
	}
	title = specialDup.ReplaceAllString(title, "特别篇")

	// Bare leading numbers become 第N话.
	if leadingNumEp.MatchString(title) {
		title = leadingNum.ReplaceAllString(title, "第${1}")
	} else if leadingNum.MatchString(title) {
		title = leadingNum.ReplaceAllString(title, "第${1}话")
	}
	return title
}
