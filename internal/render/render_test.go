package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdown(t *testing.T) {
	src := "It sounds like a **good** day.\n\nTry to:\n\n- rest\n- call a *friend*\n"
	assert.Equal(t, "It sounds like a good day.\n\nTry to:\n\n• rest\n\n• call a friend", Markdown(src))
}

func TestMarkdownPlainText(t *testing.T) {
	assert.Equal(t, "just words", Markdown("just words"))
	assert.Equal(t, "", Markdown("   "))
}

func TestTextSkipsScripts(t *testing.T) {
	assert.Equal(t, "hello", Text("<p>hello</p><script>alert(1)</script>"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "héllo w...", Truncate("héllo wörld again", 10))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "one two three", Preview("one\ntwo\n\n  three", 40))
}
