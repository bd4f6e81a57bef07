package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	// 空入力は空文字列
	assert.Equal(t, "", NormalizeText(""))

	// 前後の空白は除去される
	assert.Equal(t, "great product", NormalizeText("  great product  "))

	// 連続する空白は1つに圧縮される
	assert.Equal(t, "great product here", NormalizeText("great   product\t\there"))

	// 制御文字は空白扱いになり、語の結合は起きない
	assert.Equal(t, "line one line two", NormalizeText("line one\r\nline two"))
	assert.Equal(t, "before after", NormalizeText("before\x00after"))

	// 正規化済みの入力はそのまま
	assert.Equal(t, "already clean", NormalizeText("already clean"))

	// 空白のみの入力は空文字列
	assert.Equal(t, "", NormalizeText("   \t\n  "))
}

func TestNormalizeTextIsPure(t *testing.T) {
	input := "  same   input  "
	first := NormalizeText(input)
	second := NormalizeText(input)
	assert.Equal(t, first, second, "同じ入力には常に同じ結果を返すこと")
}

func TestNormalizeForMatching(t *testing.T) {
	assert.Equal(t, "battery dies quickly", normalizeForMatching("  Battery   DIES Quickly "))
}
