package logging

import (
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
)

// NoData replaces response bodies that are empty or not text
const NoData = "NO DATA"

// RenderBody returns body as text, or NoData when it is empty, binary or not UTF-8
func RenderBody(body []byte) string {
	if len(body) == 0 || !utf8.Valid(body) {
		return NoData
	}
	for mt := mimetype.Detect(body); mt != nil; mt = mt.Parent() {
		if mt.Is("text/plain") {
			return string(body)
		}
	}
	return NoData
}
