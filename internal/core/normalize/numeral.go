package normalize

import "unicode/utf8"

// kanji and formal (daiji) numerals; 参 and 參 are both seen in the wild
var kanji = map[rune]int{
	'一': 1, '壱': 1, '壹': 1,
	'二': 2, '弐': 2, '貳': 2,
	'三': 3, '参': 3, '參': 3,
	'四': 4, '肆': 4,
	'五': 5, '伍': 5,
	'六': 6, '陸': 6,
	'七': 7, '漆': 7,
	'八': 8, '捌': 8,
	'九': 9, '玖': 9,
}

// Numeral reads a single digit written as ASCII, fullwidth or kanji
// it does not range check; callers validate against their own bounds
func Numeral(s string) (int, bool) {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) {
		return 0, false
	}
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0'), true
	case r >= '０' && r <= '９':
		return int(r - '０'), true
	}
	v, ok := kanji[r]
	return v, ok
}
