package pages

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"finrag/internal/indexer"
)

var pageMarker = regexp.MustCompile(`(?im)^[ \t]*<!--\s*page\s+(\d+)\s*-->[ \t]*$`)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// LoadMarkdown reads a markdown export with <!-- page N --> markers between
// pages. Text before the first marker belongs to the first page, and a file
// without markers is a single page 1. Markdown is flattened to plain text
// and tables become "| a | b |" rows.
func LoadMarkdown(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read markdown: %w", err)
	}
	src := strings.ReplaceAll(string(data), "\r\n", "\n")

	type segment struct {
		number int
		body   string
	}
	var segments []segment

	markers := pageMarker.FindAllStringSubmatchIndex(src, -1)
	if len(markers) == 0 {
		segments = append(segments, segment{number: 1, body: src})
	}
	for i, m := range markers {
		number, err := strconv.Atoi(src[m[2]:m[3]])
		if err != nil {
			return nil, fmt.Errorf("invalid page marker %q: %w", src[m[0]:m[1]], err)
		}
		end := len(src)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		body := src[m[1]:end]
		if i == 0 && strings.TrimSpace(src[:m[0]]) != "" {
			body = src[:m[0]] + "\n\n" + body
		}
		segments = append(segments, segment{number: number, body: body})
	}

	doc := &Document{Pages: make([]indexer.Page, 0, len(segments))}
	var h2Title string
	for _, seg := range segments {
		source := []byte(seg.body)
		root := markdown.Parser().Parse(text.NewReader(source))

		if doc.Title == "" {
			h1, h2 := headingTitles(root, source)
			doc.Title = h1
			if h2Title == "" {
				h2Title = h2
			}
		}

		doc.Pages = append(doc.Pages, indexer.Page{
			Number: seg.number,
			Text:   renderBlocks(root, source),
		})
	}
	if doc.Title == "" {
		doc.Title = h2Title
	}

	return doc, nil
}

// headingTitles returns the text of the first level 1 and level 2 headings.
func headingTitles(root ast.Node, source []byte) (h1, h2 string) {
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		switch {
		case heading.Level == 1 && h1 == "":
			h1 = inlineText(heading, source)
			return ast.WalkStop, nil
		case heading.Level == 2 && h2 == "":
			h2 = inlineText(heading, source)
		}
		return ast.WalkSkipChildren, nil
	})
	return h1, h2
}

// renderBlocks flattens the block children of parent, separated by blank
// lines.
func renderBlocks(parent ast.Node, source []byte) string {
	var blocks []string
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if block := renderBlock(n, source); strings.TrimSpace(block) != "" {
			blocks = append(blocks, block)
		}
	}
	return strings.Join(blocks, "\n\n")
}

func renderBlock(n ast.Node, source []byte) string {
	switch v := n.(type) {
	case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
		return inlineText(v, source)
	case *ast.List:
		return renderList(v, source)
	case *east.Table:
		return renderTable(v, source)
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return rawLines(v, source)
	case *ast.Blockquote:
		return renderBlocks(v, source)
	case *ast.HTMLBlock, *ast.ThematicBreak:
		return ""
	default:
		return renderBlocks(v, source)
	}
}

func renderList(list *ast.List, source []byte) string {
	var lines []string
	number := list.Start
	if number == 0 {
		number = 1
	}
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "-"
		if list.IsOrdered() {
			marker = strconv.Itoa(number) + "."
			number++
		}
		body := strings.ReplaceAll(renderBlocks(item, source), "\n\n", "\n")
		lines = append(lines, marker+" "+body)
	}
	return strings.Join(lines, "\n")
}

func renderTable(table *east.Table, source []byte) string {
	var rows []string
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			if _, ok := cell.(*east.TableCell); !ok {
				continue
			}
			cells = append(cells, strings.TrimSpace(inlineText(cell, source)))
		}
		rows = append(rows, "| "+strings.Join(cells, " | ")+" |")
	}
	return strings.Join(rows, "\n")
}

func rawLines(n ast.Node, source []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	return strings.TrimRight(b.String(), "\n")
}

// inlineText extracts the text content of n and its inline children. Soft
// line breaks are kept as newlines.
func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(source))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.AutoLink:
			b.Write(v.Label(source))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
