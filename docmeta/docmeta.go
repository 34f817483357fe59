// Package docmeta reads the PDFs that come with model downloads for text, links and licensing.
package docmeta

import (
	"bytes"
	"fmt"
	"github.com/ledongthuc/pdf"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const descriptionLimit = 500

var (
	uriAnnotationPattern = regexp.MustCompile(`/URI\s*\(([^)]*)\)`)
	textURLPattern       = regexp.MustCompile(`https?://[^\s<>()"'\]\[]+`)
)

type Metadata struct {
	LinkInfo
	Text        string   `json:"text,omitempty"`
	Description string   `json:"description,omitempty"`
	Links       []string `json:"links,omitempty"`
}

// ExtractText returns the plain text of the PDF at path.
func ExtractText(path string) (string, error) {
	data, err := os.ReadFile(filepath.Clean(path))

	if err != nil {
		return "", err
	}

	return extractText(data)
}

func extractText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))

	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}

	plain, err := reader.GetPlainText()

	if err != nil {
		return "", fmt.Errorf("pdf plaintext: %w", err)
	}

	text, err := io.ReadAll(plain)

	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}

	return strings.TrimSpace(string(text)), nil
}

// ExtractLinks collects link annotations and URLs written in the text. An unreadable text layer
// still returns the annotations.
func ExtractLinks(path string) ([]string, error) {
	data, err := os.ReadFile(filepath.Clean(path))

	if err != nil {
		return nil, err
	}

	text, _ := extractText(data)
	return collectLinks(data, text), nil
}

func collectLinks(data []byte, text string) []string {
	var links []string
	seen := map[string]bool{}

	add := func(link string) {
		link = strings.TrimRight(strings.TrimSpace(link), ".,;")

		if link == "" || seen[link] {
			return
		}

		seen[link] = true
		links = append(links, link)
	}

	for _, match := range uriAnnotationPattern.FindAllSubmatch(data, -1) {
		add(string(match[1]))
	}

	for _, match := range textURLPattern.FindAllString(text, -1) {
		add(match)
	}

	return links
}

// Describe combines the text and link classification of one PDF. It returns whatever it could
// read along with the first error.
func Describe(path string) (Metadata, error) {
	data, err := os.ReadFile(filepath.Clean(path))

	if err != nil {
		return Metadata{}, err
	}

	text, textErr := extractText(data)
	links := collectLinks(data, text)

	metadata := Metadata{
		LinkInfo:    ClassifyLinks(links),
		Text:        text,
		Description: describe(text),
		Links:       links,
	}

	if textErr != nil {
		return metadata, fmt.Errorf("%s: %w", filepath.Base(path), textErr)
	}

	return metadata, nil
}

func describe(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")

	if runes := []rune(collapsed); len(runes) > descriptionLimit {
		return string(runes[:descriptionLimit])
	}

	return collapsed
}
