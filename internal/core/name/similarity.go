package name

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

const shortWordLength = 4

// WordsSimilar は 2 つの単語が同一人物の名前の揺れとみなせるかを判定します。
// 完全一致、前方一致 (省略形)、編集距離 (4 文字以下は 1、それ以外は 2 まで) のいずれかで真になります。
func WordsSimilar(a, b string) bool {
	if a == b {
		return true
	}
	if a == "" || b == "" {
		return false
	}

	if strings.HasPrefix(a, b) || strings.HasPrefix(b, a) {
		return true
	}

	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}

	threshold := 2
	if maxLen <= shortWordLength {
		threshold = 1
	}

	return levenshtein.ComputeDistance(a, b) <= threshold
}

// NamesSimilar は 2 つの氏名が同一人物を指すかを判定します。
// 名 (先頭トークン) の一致は必須条件です。
func NamesSimilar(a, b string) bool {
	n1 := Normalize(a)
	n2 := Normalize(b)
	if n1 == "" || n2 == "" {
		return false
	}
	if n1 == n2 {
		return true
	}

	words1 := Tokens(n1)
	words2 := Tokens(n2)

	if !WordsSimilar(words1[0], words2[0]) {
		return false
	}

	if len(words1) == 1 && len(words2) == 1 {
		return true
	}

	last1 := words1[len(words1)-1]
	last2 := words2[len(words2)-1]

	// イニシャルのみの姓
	if isInitial(last1) != isInitial(last2) {
		if isInitial(last1) {
			return last1 == firstRune(last2)
		}
		return last2 == firstRune(last1)
	}

	if WordsSimilar(last1, last2) {
		return true
	}

	// ミドルネームの挿入
	if strings.Contains(n1, n2) || strings.Contains(n2, n1) {
		return true
	}

	return significantTokensCovered(words1, words2)
}

// significantTokensCovered は短い方の氏名の有意トークンがすべて長い方に対応するかを返します。
func significantTokensCovered(words1, words2 []string) bool {
	// 同数のときは words2 を基準にします。
	var shorter, longer []string
	if len(words1) < len(words2) {
		shorter, longer = words1, words2
	} else {
		shorter, longer = words2, words1
	}

	significant := 0
	for _, word := range shorter {
		if utf8.RuneCountInString(word) <= 1 {
			continue
		}
		significant++

		matched := false
		for _, candidate := range longer {
			if WordsSimilar(word, candidate) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return significant > 0
}

func isInitial(word string) bool {
	return utf8.RuneCountInString(word) == 1
}

func firstRune(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError && size <= 1 {
		return ""
	}
	return word[:size]
}
