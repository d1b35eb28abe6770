package crawler

import (
	"errors"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"go.uber.org/zap"
)

const gitignoreFile = ".gitignore"

// gitignoreRules holds the compiled .gitignore of every directory visited so
// far, keyed by slash separated path relative to the root ("" for the root).
// A path is ignored when the rules of any enclosing directory match it;
// negations only apply within the file that declares them.
type gitignoreRules struct {
	root   string
	byDir  map[string]*ignore.GitIgnore
	logger *zap.SugaredLogger
}

func newGitignoreRules(root string, logger *zap.SugaredLogger) *gitignoreRules {
	return &gitignoreRules{root: root, byDir: map[string]*ignore.GitIgnore{}, logger: logger}
}

// load compiles the .gitignore of dir, if it has one.
func (r *gitignoreRules) load(dir string) {
	file := filepath.Join(r.root, filepath.FromSlash(dir), gitignoreFile)
	rules, err := ignore.CompileIgnoreFile(file)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.logger.Warnw("Skipping unreadable .gitignore", "file", file, "error", err)
		}
		return
	}
	r.byDir[dir] = rules
}

// Ignored reports whether rel, a slash separated root-relative path, is
// excluded by an enclosing .gitignore.
func (r *gitignoreRules) Ignored(rel string, isDir bool) bool {
	for dir, rules := range r.byDir {
		sub, ok := below(dir, rel)
		if !ok {
			continue
		}
		if rules.MatchesPath(sub) || (isDir && rules.MatchesPath(sub+"/")) {
			return true
		}
	}
	return false
}

// below returns rel relative to dir when dir strictly encloses it.
func below(dir, rel string) (string, bool) {
	if dir == "" {
		return rel, true
	}
	if !strings.HasPrefix(rel, dir+"/") {
		return "", false
	}
	return path.Clean(rel[len(dir)+1:]), true
}
