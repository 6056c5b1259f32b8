package corpus

import (
	"strings"
	"unicode"
)

// clean drops mentions, links and hashtags so generated text never pings anyone
func clean(text string) string {
	fields := strings.Fields(text)
	kept := fields[:0]
	for _, f := range fields {
		if strings.HasPrefix(f, "@") || strings.HasPrefix(f, "#") ||
			strings.HasPrefix(f, "http://") || strings.HasPrefix(f, "https://") {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

type script uint8

const (
	scriptOther script = iota
	scriptHan
	scriptKatakana
	scriptLatin
)

func scriptOf(r rune) script {
	switch {
	case unicode.Is(unicode.Han, r):
		return scriptHan
	case unicode.Is(unicode.Katakana, r) || r == 'ー':
		return scriptKatakana
	case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
		return scriptLatin
	default:
		return scriptOther
	}
}

// Words splits text into content words: runs of kanji, katakana or latin of at
// least two runes; kana particles and punctuation separate them
func Words(text string) []string {
	var (
		out  []string
		run  []rune
		prev = scriptOther
	)
	flush := func() {
		if len(run) >= 2 {
			out = append(out, string(run))
		}
		run = run[:0]
	}
	for _, r := range text {
		sc := scriptOf(r)
		if sc != prev {
			flush()
			prev = sc
		}
		if sc != scriptOther {
			run = append(run, r)
		}
	}
	flush()
	return out
}
