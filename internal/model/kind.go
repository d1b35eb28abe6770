package model

import (
	"path/filepath"
	"sort"
	"strings"
)

// FileKind groups source files by the detection strategy applied to them.
type FileKind string

const (
	KindUnknown FileKind = ""
	KindScript  FileKind = "script"
	KindStyle   FileKind = "style"
	KindMarkup  FileKind = "markup"
)

var kindByExt = map[string]FileKind{
	".js":   KindScript,
	".mjs":  KindScript,
	".cjs":  KindScript,
	".jsx":  KindScript,
	".ts":   KindScript,
	".mts":  KindScript,
	".cts":  KindScript,
	".tsx":  KindScript,
	".css":  KindStyle,
	".scss": KindStyle,
	".sass": KindStyle,
	".html": KindMarkup,
	".htm":  KindMarkup,
}

// KindOf classifies a path by its lower-cased extension.
func KindOf(path string) FileKind {
	return kindByExt[strings.ToLower(filepath.Ext(path))]
}

// SupportedExtensions lists the extensions of kind, sorted. KindUnknown lists
// every extension the engine can analyze.
func SupportedExtensions(kind FileKind) []string {
	exts := make([]string, 0, len(kindByExt))
	for ext, k := range kindByExt {
		if kind == KindUnknown || k == kind {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}
