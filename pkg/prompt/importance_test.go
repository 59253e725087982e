package prompt_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crystallen/memchat/pkg/prompt"
)

func TestImportanceScore(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{name: "empty", text: "", want: 0.0},
		{name: "short plain", text: "hello there", want: 0.0},
		{name: "medium length", text: strings.Repeat("a", 60), want: 0.3},
		{name: "long", text: strings.Repeat("a", 500), want: 0.1},
		{name: "boundary 50", text: strings.Repeat("a", 50), want: 0.0},
		{name: "digit", text: "room 7", want: 0.1},
		{name: "keyword", text: "please remember", want: 0.2},
		{name: "keyword case insensitive", text: "IMPORTANT", want: 0.2},
		{name: "two keywords", text: "important note", want: 0.4},
		{name: "cjk keyword and name", text: "记住", want: 0.3},
		{name: "name only", text: "张三", want: 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, prompt.ImportanceScore(tt.text), 1e-9)
		})
	}
}

func TestImportanceScoreClamped(t *testing.T) {
	text := "important critical remember note summary conclusion 重要 关键 记住 注意 总结 结论 42 " +
		strings.Repeat("x", 20)

	score := prompt.ImportanceScore(text)

	assert.Equal(t, 1.0, score)
}

func TestImportanceScoreMonotonic(t *testing.T) {
	steps := []string{
		"plain",
		"plain 2024",
		"plain 2024 remember",
		"plain 2024 remember important",
		"plain 2024 remember important " + strings.Repeat("y", 40),
		"plain 2024 remember important 王五 " + strings.Repeat("y", 40),
		"plain 2024 remember important 王五 summary conclusion note " + strings.Repeat("y", 40),
	}

	prev := -1.0
	for _, text := range steps {
		score := prompt.ImportanceScore(text)
		assert.GreaterOrEqual(t, score, prev, text)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
		prev = score
	}
}

func TestLooksLikeName(t *testing.T) {
	assert.True(t, prompt.LooksLikeName("我叫李雷"))
	assert.True(t, prompt.LooksLikeName("met 韩梅梅 today"))
	assert.False(t, prompt.LooksLikeName("John Smith"))
	assert.False(t, prompt.LooksLikeName("单"))
}
