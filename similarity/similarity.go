// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package similarity scores how alike two names are.
//
// Scores are normalized edit distances: 1 - lev(a, b) / max(len(a), len(b)).
// Identical strings score 1.0 and the score never leaves [0, 1].
package similarity

import (
	"strings"

	"github.com/xrash/smetrics"
)

const (
	// SearchThreshold is the minimum score for a fuzzy search match.
	SearchThreshold = 0.70

	// DuplicateThreshold is the minimum score for a similar-name duplicate.
	DuplicateThreshold = 0.80
)

// Score returns the normalized Levenshtein similarity of a and b.
// Inputs are compared as given; callers normalize first.
func Score(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)
	maxLen := max(len(ra), len(rb))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(distance(ra, rb))/float64(maxLen)
}

// distance is the character-level Levenshtein distance of a and b.
func distance(a, b []rune) int {
	ea, eb, ok := byteAlphabet(a, b)
	if !ok {
		return runeDistance(a, b)
	}
	return smetrics.WagnerFischer(ea, eb, 1, 1, 1)
}

// byteAlphabet rewrites a and b over a shared one-byte alphabet so that a
// byte-wise edit distance counts characters. It fails when a and b use more
// than 256 distinct runes.
func byteAlphabet(a, b []rune) (string, string, bool) {
	codes := make(map[rune]byte)
	encode := func(rs []rune) (string, bool) {
		buf := make([]byte, len(rs))
		for i, r := range rs {
			c, seen := codes[r]
			if !seen {
				if len(codes) == 256 {
					return "", false
				}
				c = byte(len(codes))
				codes[r] = c
			}
			buf[i] = c
		}
		return string(buf), true
	}
	ea, ok := encode(a)
	if !ok {
		return "", "", false
	}
	eb, ok := encode(b)
	if !ok {
		return "", "", false
	}
	return ea, eb, true
}

// runeDistance is a two-row Levenshtein over runes.
func runeDistance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// Normalize lower-cases s, trims it and collapses runs of whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// NormalizeStrict is Normalize with every character outside [a-z0-9 ] removed.
func NormalizeStrict(s string) string {
	lowered := strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NameScore normalizes both names before scoring.
func NameScore(a, b string) float64 {
	return Score(Normalize(a), Normalize(b))
}

// SoundsAlike reports whether two names share a Soundex code.
// Only the letters of each name are considered; names without letters never match.
func SoundsAlike(a, b string) bool {
	ca, cb := soundex(a), soundex(b)
	return ca != "" && ca == cb
}

func soundex(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return smetrics.Soundex(b.String())
}
