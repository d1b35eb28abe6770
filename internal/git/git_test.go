package git

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDiff = `diff --git a/src/app.js b/src/app.js
index 3b18e51..a3c2f0e 100644
--- a/src/app.js
+++ b/src/app.js
@@ -3 +3 @@ import x from 'y';
-old
+new
@@ -10,0 +11,3 @@ function f() {
+a
+b
+c
@@ -20,2 +23,0 @@
-gone
-gone
diff --git a/styles/old.css b/styles/old.css
deleted file mode 100644
--- a/styles/old.css
+++ /dev/null
@@ -1,2 +0,0 @@
-.a {}
-.b {}
diff --git a/index.html b/index.html
new file mode 100644
--- /dev/null
+++ b/index.html
@@ -0,0 +1,2 @@
+<dialog></dialog>
+<p></p>
`

func TestParseDiff(t *testing.T) {
	changes, err := parseDiff([]byte(sampleDiff))
	require.NoError(t, err)
	require.Len(t, changes, 3)

	assert.Equal(t, "src/app.js", changes[0].Path)
	assert.Equal(t, []int{3, 11, 12, 13}, changes[0].ChangedLines)

	assert.Equal(t, "styles/old.css", changes[1].Path)
	assert.Empty(t, changes[1].ChangedLines)

	assert.Equal(t, "index.html", changes[2].Path)
	assert.Equal(t, []int{1, 2}, changes[2].ChangedLines)

	assert.Equal(t, []string{"src/app.js", "styles/old.css", "index.html"}, Paths(changes))
}

func TestParseDiff_Empty(t *testing.T) {
	changes, err := parseDiff(nil)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestChangedFiles_NotARepository(t *testing.T) {
	_, err := ChangedFiles(context.Background(), t.TempDir(), "HEAD")
	assert.Error(t, err)
}
