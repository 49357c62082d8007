package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinPages(t *testing.T) {
	assert.Equal(t, "", JoinPages(nil))
	assert.Equal(t, "only page", JoinPages([]string{"only page"}))
	assert.Equal(t, "first\n\nsecond\n\nthird", JoinPages([]string{"first", "second", "third"}))
}

func TestJoinPagesKeepsEmptyPages(t *testing.T) {
	joined := JoinPages([]string{"first", "", "third"})
	assert.Equal(t, "first\n\n\n\nthird", joined)
	assert.Equal(t, []string{"first", "", "third"}, SplitPages(joined))
}

func TestSplitPagesRoundTrip(t *testing.T) {
	pages := []string{"invoice header", "line items\ntotal: 42", "terms"}
	assert.Equal(t, pages, SplitPages(JoinPages(pages)))
}
