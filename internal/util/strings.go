package util

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ToValidUTF8Bytes passes valid UTF-8 through and reads anything else as
// Latin-1, the usual encoding of legacy pages that declare none.
func ToValidUTF8Bytes(page []byte) []byte {
	if utf8.Valid(page) {
		return page
	}
	// ISO-8859-1 assigns every byte, so decoding cannot fail.
	decoded, _ := charmap.ISO8859_1.NewDecoder().Bytes(page)
	return decoded
}
