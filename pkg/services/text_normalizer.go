package services

import (
	"strings"
	"unicode"
)

// NormalizeText レビュー本文を下流処理向けに正規化します。
// 制御文字の除去、連続する空白の圧縮、前後の空白除去を行います。
// 副作用のない純粋関数で、空入力には空文字列を返し、失敗しません。
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))

	lastWasSpace := true // 先頭の空白を落とすためtrue始まり
	for _, r := range text {
		// 制御文字は空白扱いにして語の結合を防ぐ
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			if !lastWasSpace {
				b.WriteRune(' ')
				lastWasSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastWasSpace = false
	}

	return strings.TrimRight(b.String(), " ")
}

// normalizeForMatching キーワード照合用にさらに小文字化します。
func normalizeForMatching(text string) string {
	return strings.ToLower(NormalizeText(text))
}
