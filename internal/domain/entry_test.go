package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEntry(t *testing.T) {
	assert.NoError(t, ValidateEntry("k", "v"))
	assert.NoError(t, ValidateEntry("k", "value with spaces"))
	assert.NoError(t, ValidateEntry("k", ""))

	for _, tc := range [][2]string{
		{"", "v"},
		{"a b", "v"},
		{"a\tb", "v"},
		{"k", "line\nbreak"},
		{"k", "carriage\r"},
	} {
		assert.ErrorIs(t, ValidateEntry(tc[0], tc[1]), ErrProtocol, "%q=%q", tc[0], tc[1])
	}
}
