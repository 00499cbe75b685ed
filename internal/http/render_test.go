package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTemplates(t *testing.T) {
	pages, err := loadTemplates()
	require.NoError(t, err)

	for _, name := range []string{
		"error.html",
		"blog/post_list.html",
		"blog/post_detail.html",
		"blog/post_edit.html",
		"blog/post_draft_list.html",
		"blog/add_comment.html",
		"polls/index.html",
		"polls/detail.html",
		"polls/results.html",
	} {
		assert.Contains(t, pages.pages, name)
	}
	assert.NotContains(t, pages.pages, "base.html")

	assert.Panics(t, func() { pages.Instance("missing.html", nil) })
}

func TestPercent(t *testing.T) {
	percent := templateFuncs["percent"].(func(int64, int64) int64)
	assert.Equal(t, int64(0), percent(0, 0))
	assert.Equal(t, int64(33), percent(1, 3))
	assert.Equal(t, int64(100), percent(4, 4))
}
