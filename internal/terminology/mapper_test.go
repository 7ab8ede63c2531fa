package terminology

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drugwatch/domain/core"
)

func TestNormalize_CanonicalAndSynonym(t *testing.T) {
	mapper := NewMapper()
	ctx := context.Background()

	match, ok, err := mapper.Normalize(ctx, "Hepatotoxicity")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, core.EventKey("hepatotoxicity"), match.Canonical)
	assert.Equal(t, 1.0, match.Confidence)

	match, ok, err = mapper.Normalize(ctx, "  Liver Damage ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, core.EventKey("hepatotoxicity"), match.Canonical)
	assert.Less(t, match.Confidence, 1.0)
}

func TestNormalize_NoMatch(t *testing.T) {
	mapper := NewMapper()

	_, ok, err := mapper.Normalize(context.Background(), "completely unknown thing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = mapper.Normalize(context.Background(), "   ")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddTerm_ExtendsDictionary(t *testing.T) {
	mapper := NewMapper()
	mapper.AddTerm("serotonin syndrome", "serotonin toxicity")

	match, ok, err := mapper.Normalize(context.Background(), "serotonin toxicity")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, core.EventKey("serotonin syndrome"), match.Canonical)
}
