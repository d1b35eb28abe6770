package analysis

import (
	"baseliner/internal/git"
	"baseliner/internal/model"
)

// FilterChanged keeps the findings that sit on a changed line of a changed file.
func FilterChanged(findings []model.Finding, changes []git.ChangedFile) []model.Finding {
	lines := make(map[string]map[int]bool, len(changes))
	for _, change := range changes {
		set := lines[change.Path]
		if set == nil {
			set = make(map[int]bool, len(change.ChangedLines))
			lines[change.Path] = set
		}
		for _, l := range change.ChangedLines {
			set[l] = true
		}
	}

	var out []model.Finding
	for _, f := range findings {
		if lines[f.File][f.Line] {
			out = append(out, f)
		}
	}
	return out
}
