package config

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Target sources reported by ResolveTargets.
const (
	SourceConfig         = "config"
	SourceBrowserslistrc = ".browserslistrc"
	SourcePackageJSON    = "package.json"
	SourceNone           = "none"
)

// ResolveTargets picks the target queries for a scan of root: configured
// targets first, then root/.browserslistrc, then the browserslist field of
// root/package.json. No targets at all is not an error.
func (c *Config) ResolveTargets(root string) ([]string, string, error) {
	if len(c.Targets) > 0 {
		return c.Targets, SourceConfig, nil
	}

	targets, err := readBrowserslistrc(filepath.Join(root, ".browserslistrc"))
	if err != nil {
		return nil, "", err
	}
	if len(targets) > 0 {
		return targets, SourceBrowserslistrc, nil
	}

	targets, err = readPackageJSON(filepath.Join(root, "package.json"))
	if err != nil {
		return nil, "", err
	}
	if len(targets) > 0 {
		return targets, SourcePackageJSON, nil
	}
	return nil, SourceNone, nil
}

// readBrowserslistrc returns the queries of the default section. Queries of
// named environments ("[production]") are ignored.
func readBrowserslistrc(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var out []string
	inSection := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line, _, _ := strings.Cut(scanner.Text(), "#")
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case strings.HasPrefix(line, "["):
			inSection = true
		case !inSection:
			out = append(out, splitList(line)...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return out, nil
}

func readPackageJSON(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var pkg struct {
		Browserslist json.RawMessage `json:"browserslist"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(pkg.Browserslist) == 0 {
		return nil, nil
	}

	var list []string
	if err := json.Unmarshal(pkg.Browserslist, &list); err == nil {
		return list, nil
	}
	var single string
	if err := json.Unmarshal(pkg.Browserslist, &single); err == nil {
		return splitList(single), nil
	}
	var envs map[string][]string
	if err := json.Unmarshal(pkg.Browserslist, &envs); err == nil {
		return envs["production"], nil
	}
	return nil, fmt.Errorf("%s: unsupported browserslist value", path)
}
