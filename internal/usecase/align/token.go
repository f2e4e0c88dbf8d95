package align

import (
	"strings"
	"unicode"
)

// Filler tokens carry no alignment signal and are dropped during
// normalization so they cannot pull the path off the diagonal.
var fillerTokens = map[string]struct{}{
	"uh":  {},
	"um":  {},
	"erm": {},
}

// normalizeToken lowercases a raw token and strips everything except letters,
// digits, underscores and apostrophes. Returns "" for tokens that normalize
// away entirely (pure punctuation, known fillers).
func normalizeToken(tok string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(tok) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '\'' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if _, drop := fillerTokens[out]; drop {
		return ""
	}
	return out
}

// tokenize splits text on whitespace and normalizes each token, dropping
// tokens that normalize to "".
func tokenize(text string) []string {
	fields := strings.Fields(text)
	toks := make([]string, 0, len(fields))
	for _, f := range fields {
		if t := normalizeToken(f); t != "" {
			toks = append(toks, t)
		}
	}
	return toks
}

// dissimilarity returns a matching cost in [0,1]: 0 for identical tokens,
// otherwise the Levenshtein distance between them divided by the longer
// token's rune length. Case and punctuation differences are already gone
// after normalization.
func dissimilarity(a, b string) float64 {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 || lb == 0 {
		return 1
	}

	prev := make([]int, lb+1)
	cur := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		cur[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min3(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}

	longer := la
	if lb > longer {
		longer = lb
	}
	return float64(prev[lb]) / float64(longer)
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
