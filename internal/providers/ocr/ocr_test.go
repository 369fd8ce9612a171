package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionsDefaults(t *testing.T) {
	t.Parallel()

	o := Options{}.withDefaults()
	assert.Equal(t, 200.0, o.DPI)
	assert.Equal(t, 90, o.Quality)
	assert.Equal(t, 5, o.MaxPages)
	assert.Equal(t, "English", o.Language)

	custom := Options{DPI: 300, Quality: 70, MaxPages: 2, Language: "German"}.withDefaults()
	assert.Equal(t, Options{DPI: 300, Quality: 70, MaxPages: 2, Language: "German"}, custom)
}

func TestInstructionCarriesLanguage(t *testing.T) {
	t.Parallel()

	assert.Contains(t, instruction("Indonesian"), "written in Indonesian")
}
