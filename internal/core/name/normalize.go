// Package name は氏名の正規化と類似判定を提供します。
package name

import "strings"

// Normalize は比較用に氏名を正規化します。
// 小文字化し、[a-z0-9 -] 以外の文字を取り除き、連続する空白を 1 つにまとめます。
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	lower := strings.ToLower(strings.TrimSpace(raw))

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case isSpace(r):
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokens は正規化済みの氏名を空白で分割します。
func Tokens(normalized string) []string {
	return strings.Fields(normalized)
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}
