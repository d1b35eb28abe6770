package crawler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baseliner/internal/model"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestCrawler_List(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/app.js":                "a",
		"src/view.tsx":              "b",
		"src/styles/site.SCSS":      "c",
		"index.html":                "d",
		"README.md":                 "e",
		"node_modules/lib/index.js": "f",
		"dist/bundle.js":            "g",
		"src/build/gen.js":          "h",
		"src/vendor.js":             "i",
	})

	paths, err := NewCrawler(nil, nil).List(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"index.html", "src/app.js", "src/styles/site.SCSS", "src/vendor.js", "src/view.tsx"}, paths)

	paths, err = NewCrawler([]string{"styles"}, nil).List(root)
	require.NoError(t, err)
	assert.Contains(t, paths, "dist/bundle.js")
	assert.NotContains(t, paths, "src/styles/site.SCSS")

	paths, err = NewCrawler(nil, nil).Only([]string{"src/app.js", "./index.html", "missing.js"}).List(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"index.html", "src/app.js"}, paths)

	_, err = NewCrawler(nil, nil).List(filepath.Join(root, "nope"))
	assert.Error(t, err)
}

func TestCrawler_ScanBatches(t *testing.T) {
	files := map[string]string{}
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		files["src/"+name+".js"] = "// " + name
	}
	root := writeTree(t, files)

	var batches [][]model.FileRef
	err := NewCrawler(nil, nil).WithBatchSize(2).Scan(context.Background(), root, func(b []model.FileRef) error {
		batches = append(batches, b)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 2)
	assert.Len(t, batches[2], 1)
	assert.Equal(t, model.FileRef{Path: "src/a.js", Content: "// a"}, batches[0][0])
	assert.Equal(t, "src/e.js", batches[2][0].Path)
}

func TestCrawler_ScanStops(t *testing.T) {
	root := writeTree(t, map[string]string{"a.js": "", "b.js": "", "c.js": ""})

	boom := errors.New("boom")
	calls := 0
	err := NewCrawler(nil, nil).WithBatchSize(1).Scan(context.Background(), root, func([]model.FileRef) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = NewCrawler(nil, nil).Scan(ctx, root, func([]model.FileRef) error {
		t.Fatal("no batch after cancellation")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCrawler_Gitignore(t *testing.T) {
	root := writeTree(t, map[string]string{
		".gitignore":           "*.min.js\ngenerated/\n/public\n",
		"src/app.js":           "a",
		"src/app.min.js":       "b",
		"generated/schema.ts":  "c",
		"src/generated/api.ts": "d",
		"public/index.html":    "e",
		"src/public/card.css":  "f",
		"web/.gitignore":       "legacy.css\n",
		"web/legacy.css":       "g",
		"web/site.css":         "h",
		"legacy.css":           "i",
	})

	paths, err := NewCrawler(nil, nil).List(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"legacy.css", "src/app.js", "src/public/card.css", "web/site.css"}, paths)

	paths, err = NewCrawler(nil, nil).WithGitignore(false).List(root)
	require.NoError(t, err)
	assert.Len(t, paths, 9)
}

func TestCrawler_InvalidUTF8(t *testing.T) {
	root := writeTree(t, map[string]string{
		"app.js":    "navigator.share({});\n",
		"legacy.js": "// caf\xe9\n",
	})

	var refs []model.FileRef
	err := NewCrawler(nil, nil).Scan(context.Background(), root, func(b []model.FileRef) error {
		refs = append(refs, b...)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "navigator.share({});\n", refs[0].Content)
	assert.Equal(t, "legacy.js", refs[1].Path)
	assert.Equal(t, "// caf\uFFFD\n", refs[1].Content)
}

func TestCrawler_UnreadableDir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	root := writeTree(t, map[string]string{
		"a.js":        "",
		"locked/b.js": "",
		"z/c.js":      "",
	})
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	paths, err := NewCrawler(nil, nil).List(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.js", "z/c.js"}, paths)
}
