package diseases

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDictionary(t *testing.T) {
	d := Default()

	assert.Len(t, d.Names(), 26)

	info, ok := d.Lookup("Cafe_Ferrugem")
	require.True(t, ok)
	assert.Contains(t, info.Identification, "Hemileia vastatrix")
	assert.NotEmpty(t, info.Prevention)
	assert.NotEmpty(t, info.Treatment)
	assert.Empty(t, info.Message)

	info, ok = d.Lookup("Arroz_Carvão_das_Folhas")
	require.True(t, ok)
	assert.NotEmpty(t, info.Treatment)
}

func TestNaturalImagesCarriesOnlyMessage(t *testing.T) {
	info, ok := Default().Lookup("Natural Images")
	require.True(t, ok)

	assert.Empty(t, info.Identification)
	assert.Contains(t, info.Message, "nova foto")
}

func TestLookupIsCaseSensitive(t *testing.T) {
	_, ok := Default().Lookup("cafe_ferrugem")
	assert.False(t, ok)

	_, ok = Default().Lookup("")
	assert.False(t, ok)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("[unterminated")
	assert.Error(t, err)
}
