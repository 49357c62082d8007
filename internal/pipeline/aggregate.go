package pipeline

import (
	"strings"
)

// pageSeparator keeps a weak paragraph boundary between pages for the
// downstream extraction model.
const pageSeparator = "\n\n"

// JoinPages concatenates per-page OCR text in page order. Empty pages still
// contribute an empty segment so positions stay recoverable.
func JoinPages(pages []string) string {
	return strings.Join(pages, pageSeparator)
}

// SplitPages is the inverse of JoinPages.
func SplitPages(text string) []string {
	return strings.Split(text, pageSeparator)
}
