package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"gopkg.in/yaml.v3"
)

// noContentSentinel is returned by the human-readable exporters when both
// the tree and the files are empty.
const noContentSentinel = "No content found"

// contentExcerptLimit caps the per-file excerpt in tabular exports.
const contentExcerptLimit = 200

// Exporter is a pure function projecting the (tree, files) pair into one
// serialization. Exporters never perform I/O and tolerate either input
// being empty.
type Exporter func(tree []Entry, files []FileRecord) (string, error)

// Format binds an output extension and description to its exporter.
type Format struct {
	Ext    string
	Desc   string
	Export Exporter
}

// defaultFormats returns the format registry. The map is built fresh per
// call so callers can hold or swap their own table.
func defaultFormats() map[string]Format {
	return map[string]Format{
		"txt":   {Ext: "txt", Desc: "Plain text. Quick & simple.", Export: exportTXT},
		"json":  {Ext: "json", Desc: "Structured JSON for APIs.", Export: exportJSON},
		"jsonl": {Ext: "jsonl", Desc: "JSON Lines for streaming/NDJSON.", Export: exportJSONL},
		"yaml":  {Ext: "yaml", Desc: "Human-friendly YAML.", Export: exportYAML},
		"md":    {Ext: "md", Desc: "Markdown with syntax coloring.", Export: exportMarkdown},
		"csv":   {Ext: "csv", Desc: "CSV for spreadsheets.", Export: exportCSV},
		"tsv":   {Ext: "tsv", Desc: "TSV for tab-delimited data.", Export: exportTSV},
		"html":  {Ext: "html", Desc: "Interactive HTML report.", Export: exportHTML},
	}
}

// pathDepth counts separators in a root-relative path. The root entry
// "." has depth zero.
func pathDepth(path string) int {
	path = filepath.ToSlash(path)
	if path == "." || path == "" {
		return 0
	}
	return strings.Count(path, "/")
}

func exportTXT(tree []Entry, files []FileRecord) (string, error) {
	var parts []string
	if len(tree) > 0 {
		parts = append(parts, "Directory Structure:")
		for _, e := range tree {
			indent := strings.Repeat("    ", pathDepth(e.Path))
			parts = append(parts, fmt.Sprintf("%s%s (%s): %s", indent, e.Name, e.HumanSize, e.Path))
		}
	}
	if len(files) > 0 {
		parts = append(parts, "\nFile Contents:")
		for _, f := range files {
			parts = append(parts, fmt.Sprintf("\nFile: %s\n%s", f.Path, f.Content))
		}
	}
	if len(parts) == 0 {
		return noContentSentinel, nil
	}
	return strings.Join(parts, "\n"), nil
}

type directoryMeta struct {
	Name           string `json:"name" yaml:"name"`
	FileCount      int    `json:"file_count" yaml:"file_count"`
	DirectoryCount int    `json:"directory_count" yaml:"directory_count"`
}

type exportMetadata struct {
	Directory directoryMeta `json:"directory" yaml:"directory"`
}

type exportDocument struct {
	Metadata  exportMetadata `json:"metadata" yaml:"metadata"`
	Structure []Entry        `json:"structure" yaml:"structure"`
	Files     []FileRecord   `json:"files" yaml:"files"`
}

// buildDocument assembles the shared JSON/YAML payload. Nil slices are
// normalized to empty ones so both encoders emit arrays, not nulls.
func buildDocument(tree []Entry, files []FileRecord) exportDocument {
	name := ""
	dirCount := 0
	for _, e := range tree {
		if e.IsDir {
			dirCount++
		}
	}
	if len(tree) > 0 {
		name = tree[0].Name
	}
	if tree == nil {
		tree = []Entry{}
	}
	if files == nil {
		files = []FileRecord{}
	}
	return exportDocument{
		Metadata: exportMetadata{
			Directory: directoryMeta{
				Name:           name,
				FileCount:      len(files),
				DirectoryCount: dirCount,
			},
		},
		Structure: tree,
		Files:     files,
	}
}

func exportJSON(tree []Entry, files []FileRecord) (string, error) {
	out, err := json.MarshalIndent(buildDocument(tree, files), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding JSON export: %w", err)
	}
	return string(out), nil
}

func exportYAML(tree []Entry, files []FileRecord) (string, error) {
	out, err := yaml.Marshal(buildDocument(tree, files))
	if err != nil {
		return "", fmt.Errorf("encoding YAML export: %w", err)
	}
	return string(out), nil
}

// jsonlRecord tags each JSONL line so consumers can route structure and
// content records independently.
type jsonlRecord struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func exportJSONL(tree []Entry, files []FileRecord) (string, error) {
	var lines []string
	for _, e := range tree {
		line, err := json.Marshal(jsonlRecord{Type: "structure", Data: e})
		if err != nil {
			return "", fmt.Errorf("encoding JSONL entry: %w", err)
		}
		lines = append(lines, string(line))
	}
	for _, f := range files {
		line, err := json.Marshal(jsonlRecord{Type: "content", Data: f})
		if err != nil {
			return "", fmt.Errorf("encoding JSONL record: %w", err)
		}
		lines = append(lines, string(line))
	}
	return strings.Join(lines, "\n"), nil
}

func exportMarkdown(tree []Entry, files []FileRecord) (string, error) {
	var md []string
	if len(tree) > 0 {
		md = append(md, "# Directory Structure")
		for _, e := range tree {
			indent := strings.Repeat("  ", pathDepth(e.Path))
			md = append(md, fmt.Sprintf("%s- **%s** (%s): `%s`", indent, e.Name, e.HumanSize, e.Path))
		}
	}
	if len(files) > 0 {
		md = append(md, "\n# File Contents")
		for _, f := range files {
			lang := f.Syntax
			if lang == "" {
				lang = "text"
			}
			md = append(md, fmt.Sprintf("\n## %s\n```%s\n%s\n```", f.Path, lang, f.Content))
		}
	}
	if len(md) == 0 {
		return noContentSentinel, nil
	}
	return strings.Join(md, "\n"), nil
}

// contentExcerpt truncates content for tabular output, appending "..."
// when anything was cut.
func contentExcerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= contentExcerptLimit {
		return content
	}
	return string(runes[:contentExcerptLimit]) + "..."
}

// exportDelimited renders the shared CSV/TSV layout; the two formats
// differ only in the delimiter handed to the writer.
func exportDelimited(tree []Entry, files []FileRecord, comma rune) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = comma

	rows := [][]string{{"Type", "Path", "Size", "Modified"}}
	for _, e := range tree {
		kind := "FILE"
		if e.IsDir {
			kind = "DIR"
		}
		rows = append(rows, []string{kind, e.Path, strconv.FormatInt(e.Size, 10), strconv.FormatInt(e.Modified, 10)})
	}
	if len(files) > 0 {
		rows = append(rows, []string{""})
		rows = append(rows, []string{"File Path", "Content Excerpt"})
		for _, f := range files {
			rows = append(rows, []string{f.Path, contentExcerpt(f.Content)})
		}
	}
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("encoding delimited export: %w", err)
	}
	return buf.String(), nil
}

func exportCSV(tree []Entry, files []FileRecord) (string, error) {
	return exportDelimited(tree, files, ',')
}

func exportTSV(tree []Entry, files []FileRecord) (string, error) {
	return exportDelimited(tree, files, '\t')
}

func exportHTML(tree []Entry, files []FileRecord) (string, error) {
	var b strings.Builder
	b.WriteString(`<html><head><meta charset="utf-8"><title>File Inspector Report</title></head><body>` + "\n")

	name := ""
	if len(tree) > 0 {
		name = tree[0].Name
	}
	fmt.Fprintf(&b, "<h1>Directory: %s</h1>\n", html.EscapeString(name))

	if len(tree) > 0 {
		b.WriteString("<details open><summary>Structure</summary><pre>\n")
		for _, e := range tree {
			fmt.Fprintf(&b, "%s (%s)\n", html.EscapeString(e.Path), html.EscapeString(e.HumanSize))
		}
		b.WriteString("</pre></details>\n")
	}
	if len(files) > 0 {
		b.WriteString("<details><summary>File Contents</summary>\n")
		for _, f := range files {
			fmt.Fprintf(&b, "<h2>%s</h2>\n", html.EscapeString(f.Path))
			b.WriteString(renderCodeBlock(f))
		}
		b.WriteString("</details>\n")
	}
	b.WriteString("</body></html>")
	return b.String(), nil
}

// renderCodeBlock emits one file's content for the HTML report. Content
// with a known syntax label goes through chroma; everything else falls
// back to an escaped <pre> block. Escaping is deliberate: project files
// routinely contain markup that would otherwise break the report or
// execute when it is served.
func renderCodeBlock(f FileRecord) string {
	if f.Syntax != "" {
		var highlighted bytes.Buffer
		if err := quick.Highlight(&highlighted, f.Content, f.Syntax, "html", "github"); err == nil {
			return highlighted.String() + "\n"
		}
	}
	return "<pre>" + html.EscapeString(f.Content) + "</pre>\n"
}
