// Package fileclass maps file extensions onto the kinds of files a model folder contains.
package fileclass

import (
	"path/filepath"
	"strings"
)

type Type string

const (
	Model    Type = "model"
	Image    Type = "image"
	Document Type = "document"
	Archive  Type = "archive"
	Unknown  Type = "unknown"
)

var extensions = map[string]Type{
	".stl":   Model,
	".3mf":   Model,
	".gcode": Model,
	".obj":   Model,
	".ply":   Model,
	".amf":   Model,
	".jpg":   Image,
	".jpeg":  Image,
	".png":   Image,
	".gif":   Image,
	".webp":  Image,
	".bmp":   Image,
	".pdf":   Document,
	".zip":   Archive,
	".rar":   Archive,
	".7z":    Archive,
}

func Classify(path string) Type {
	if t, found := extensions[strings.ToLower(filepath.Ext(path))]; found {
		return t
	}

	return Unknown
}

// IsModelOrArchive reports whether the file makes its folder a model folder.
func IsModelOrArchive(path string) bool {
	t := Classify(path)
	return t == Model || t == Archive
}

func IsImage(path string) bool {
	return Classify(path) == Image
}

func IsDocument(path string) bool {
	return Classify(path) == Document
}

// KnownExtensions lists every extension the classifier recognises, lower case with the dot.
func KnownExtensions() []string {
	known := make([]string, 0, len(extensions))

	for ext := range extensions {
		known = append(known, ext)
	}

	return known
}
