// Package pages loads report pages from files on disk.
package pages

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"finrag/internal/indexer"
)

// Document is a loaded report: its title and its pages in order.
type Document struct {
	Title string
	Pages []indexer.Page
}

// Supported file extensions.
const (
	ExtJSON     = ".json"
	ExtText     = ".txt"
	ExtMarkdown = ".md"
)

// Supported reports whether path has an extension Load understands.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtJSON, ExtText, ExtMarkdown, ".markdown":
		return true
	}
	return false
}

// Load reads the report at path, choosing the loader by file extension.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	var doc *Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtJSON:
		doc, err = LoadJSON(f)
	case ExtText:
		doc, err = LoadText(f)
	case ExtMarkdown, ".markdown":
		doc, err = LoadMarkdown(f)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	if doc.Title == "" {
		doc.Title = titleFromFilename(path)
	}
	return doc, nil
}

type jsonPage struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
}

// LoadJSON reads a JSON array of {"page_number", "text"} objects. A missing
// page number is taken from the position in the array.
func LoadJSON(r io.Reader) (*Document, error) {
	var raw []jsonPage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode pages: %w", err)
	}

	pages := make([]indexer.Page, len(raw))
	for i, p := range raw {
		number := p.PageNumber
		if number <= 0 {
			number = i + 1
		}
		pages[i] = indexer.Page{Number: number, Text: p.Text}
	}
	return &Document{Pages: pages}, nil
}

// LoadText reads pdftotext-style output where pages are separated by form
// feeds. Pages are numbered from 1.
func LoadText(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read text: %w", err)
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	parts := strings.Split(text, "\f")
	// pdftotext terminates the last page with a form feed too.
	if len(parts) > 1 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}

	pages := make([]indexer.Page, len(parts))
	for i, p := range parts {
		pages[i] = indexer.Page{Number: i + 1, Text: p}
	}
	return &Document{Pages: pages}, nil
}

// titleFromFilename extracts title from filename by removing extension and capitalizing words.
func titleFromFilename(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)

	words := strings.Fields(name)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
