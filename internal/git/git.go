package git

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

type ChangedFile struct {
	Path         string
	ChangedLines []int
}

// ChangedFiles runs git diff against baseRef inside dir and returns the changed
// files, with paths relative to dir, and the new-side line numbers of every hunk.
func ChangedFiles(ctx context.Context, dir, baseRef string) ([]ChangedFile, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", dir, "diff", "-U0", "--no-color", "--relative", baseRef, "--")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff %s failed: %w: %s", baseRef, err, strings.TrimSpace(stderr.String()))
	}

	return parseDiff(output)
}

// @@ -oldStart,oldLen +newStart,newLen @@
var chunkHeader = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,(\d+))? @@`)

func parseDiff(output []byte) ([]ChangedFile, error) {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var changes []ChangedFile
	var currentFile *ChangedFile

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "diff --git") {
			if currentFile != nil {
				changes = append(changes, *currentFile)
				currentFile = nil
			}
			// a/path b/path; the new side is authoritative
			parts := strings.Fields(line)
			if len(parts) >= 4 {
				currentFile = &ChangedFile{Path: strings.TrimPrefix(parts[3], "b/"), ChangedLines: []int{}}
			}
			continue
		}

		if currentFile == nil {
			continue
		}

		if strings.HasPrefix(line, "+++ ") {
			if target := strings.TrimPrefix(line, "+++ "); target != "/dev/null" {
				currentFile.Path = strings.TrimPrefix(target, "b/")
			}
			continue
		}

		if strings.HasPrefix(line, "@@") {
			matches := chunkHeader.FindStringSubmatch(line)
			if matches == nil {
				continue
			}
			startLine, _ := strconv.Atoi(matches[1])
			count := 1
			if matches[2] != "" {
				count, _ = strconv.Atoi(matches[2])
			}
			// count 0 is a pure deletion; no line of the new file changed
			for i := 0; i < count; i++ {
				currentFile.ChangedLines = append(currentFile.ChangedLines, startLine+i)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read diff: %w", err)
	}

	if currentFile != nil {
		changes = append(changes, *currentFile)
	}

	return changes, nil
}

// Paths returns the paths of changes.
func Paths(changes []ChangedFile) []string {
	out := make([]string, 0, len(changes))
	for _, c := range changes {
		out = append(out, c.Path)
	}
	return out
}
