package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baseliner/internal/model"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()

	t.Run("ids are unique and complete", func(t *testing.T) {
		assert.Len(t, r.All(), len(catalog))
		assert.Len(t, r.IDs(), len(catalog))
	})

	t.Run("every feature is applicable somewhere", func(t *testing.T) {
		for _, m := range r.All() {
			assert.NotEmpty(t, m.Kinds, m.ID)
			assert.NotEmpty(t, m.Title, m.ID)
			assert.Contains(t, m.DocsURL, "https://", m.ID)
		}
	})

	t.Run("structured clone is baseline", func(t *testing.T) {
		m, ok := r.Get("structured-clone")
		require.True(t, ok)
		assert.Equal(t, model.BaselineYes, m.Baseline)
	})

	t.Run("dialog is both markup and script", func(t *testing.T) {
		ids := func(kind model.FileKind) []string {
			var out []string
			for _, m := range r.ForKind(kind) {
				out = append(out, m.ID)
			}
			return out
		}
		assert.Contains(t, ids(model.KindMarkup), "html-dialog")
		assert.Contains(t, ids(model.KindScript), "html-dialog")
		assert.NotContains(t, ids(model.KindStyle), "html-dialog")
	})

	_, ok := r.Get("nope")
	assert.False(t, ok)
}

func TestNewRegistry_DuplicateReplaces(t *testing.T) {
	r := NewRegistry([]FeatureMeta{
		{ID: "a", Title: "first"},
		{ID: "b", Title: "b"},
		{ID: "a", Title: "second"},
	})
	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "second", all[0].Title)
	assert.Equal(t, "b", all[1].ID)
}
