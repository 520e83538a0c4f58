// Package report gathers every top-level text output of a scan into a single
// report file.
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/rootsploit/autoscope/internal/storage"
)

// EmptyMarker replaces the content of a zero-byte output.
const EmptyMarker = "Empty - Module Failed or Skipped"

// Section is one output file of the working directory.
type Section struct {
	Name    string `json:"name"`
	File    string `json:"file"`
	Empty   bool   `json:"empty"`
	Content string `json:"content"`
}

// Data is everything a report renders.
type Data struct {
	Target      string    `json:"target"`
	GeneratedAt time.Time `json:"generated_at"`
	Sections    []Section `json:"sections"`
}

// FileName returns the report file name for format.
func FileName(format string) string {
	return "report." + format
}

// Collect reads every top-level *.txt under the store root, sorted by name.
// Subdirectories are not searched.
func Collect(ctx context.Context, store storage.Storage, target string) (*Data, error) {
	files, err := store.List(ctx, ".", "*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to list outputs: %w", err)
	}

	data := &Data{Target: target, GeneratedAt: time.Now().UTC(), Sections: []Section{}}
	for _, f := range files {
		name := filepath.Base(f)
		sec := Section{Name: strings.TrimSuffix(name, filepath.Ext(name)), File: name}

		size, err := store.Size(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", name, err)
		}
		if size == 0 {
			sec.Empty = true
			sec.Content = EmptyMarker
		} else {
			b, err := store.Read(ctx, f)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", name, err)
			}
			sec.Content = string(b)
		}
		data.Sections = append(data.Sections, sec)
	}
	return data, nil
}

// Generate writes report.<format> into the store root and returns its path.
func Generate(ctx context.Context, store storage.Storage, target, format string) (string, error) {
	data, err := Collect(ctx, store, target)
	if err != nil {
		return "", err
	}
	out, err := Render(data, format)
	if err != nil {
		return "", err
	}

	name := FileName(format)
	if err := store.Write(ctx, name, out); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return filepath.Join(store.BaseDir(), name), nil
}

// Render formats data as md, json or csv.
func Render(data *Data, format string) ([]byte, error) {
	switch format {
	case "md":
		return renderMarkdown(data)
	case "json":
		return renderJSON(data)
	case "csv":
		return renderCSV(data)
	}
	return nil, fmt.Errorf("unsupported report format: %s", format)
}

var markdownTmpl = template.Must(template.New("report").Parse(
	`# AutoScope Report

{{range .Sections}}## {{.Name}}
{{.Content}}

{{end}}`))

func renderMarkdown(data *Data) ([]byte, error) {
	var buf bytes.Buffer
	if err := markdownTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

func renderJSON(data *Data) ([]byte, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render json: %w", err)
	}
	return append(b, '\n'), nil
}

// renderCSV emits one row per non-blank line; empty sections get the marker row.
func renderCSV(data *Data) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"section", "line"})
	for _, s := range data.Sections {
		if s.Empty {
			w.Write([]string{s.Name, EmptyMarker})
			continue
		}
		for _, line := range strings.Split(s.Content, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			w.Write([]string{s.Name, line})
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to render csv: %w", err)
	}
	return buf.Bytes(), nil
}
