// Package render turns resolved schedules into client source files. Each
// supported client pairs one embedded template with the file extension its
// output must carry. Templates read values through ResolvedSchedule's
// erroring accessors, so a template referencing an absent category or member
// aborts rendering instead of writing a defaulted value.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/raceday/pitstop/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Generator renders one client's source file from a resolved schedule.
type Generator struct {
	Client    string
	Extension string

	templateFile string
}

// generators lists the supported clients.
var generators = map[string]Generator{
	"geth":       {Client: "geth", Extension: ".go", templateFile: "geth.go.tmpl"},
	"erigon":     {Client: "erigon", Extension: ".go", templateFile: "erigon.go.tmpl"},
	"nethermind": {Client: "nethermind", Extension: ".cs", templateFile: "nethermind.cs.tmpl"},
}

// Clients returns the supported client names, sorted.
func Clients() []string {
	names := make([]string, 0, len(generators))
	for name := range generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForClient returns the generator for one client name.
func ForClient(name string) (Generator, error) {
	generator, ok := generators[name]
	if !ok {
		return Generator{}, fmt.Errorf("unknown client %q (supported: %s)", name, strings.Join(Clients(), ", "))
	}
	return generator, nil
}

// ValidateOutputPath checks that path carries the client's file extension.
func (g Generator) ValidateOutputPath(path string) error {
	if filepath.Ext(path) != g.Extension {
		return fmt.Errorf("output file for %s must have %s extension, got %q", g.Client, g.Extension, path)
	}
	return nil
}

// Render produces the client source text for one resolved schedule. Output
// is deterministic: category and member iteration is sorted, and nothing
// time- or environment-dependent enters the template data.
func (g Generator) Render(schedule domain.ResolvedSchedule) (string, error) {
	tmpl, err := template.New(g.templateFile).Funcs(funcMap()).ParseFS(templateFS, "templates/"+g.templateFile)
	if err != nil {
		return "", fmt.Errorf("parse %s template: %w", g.Client, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, schedule); err != nil {
		return "", fmt.Errorf("render %s for fork %s: %w", g.Client, schedule.Fork, err)
	}
	return buf.String(), nil
}

// Generate renders the schedule and writes it to outputPath, creating parent
// directories as needed.
func (g Generator) Generate(schedule domain.ResolvedSchedule, outputPath string) error {
	if err := g.ValidateOutputPath(outputPath); err != nil {
		return err
	}
	code, err := g.Render(schedule)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, []byte(code), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	return nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"join":   strings.Join,
		"export": exportName,
	}
}

// exportName turns an authored identifier like "prague_sload_100" or
// "SLOAD" into an exported CamelCase name ("PragueSload100", "Sload").
func exportName(id string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z':
			if upperNext {
				b.WriteRune(r - 'a' + 'A')
			} else {
				b.WriteRune(r)
			}
			upperNext = false
		case r >= 'A' && r <= 'Z':
			if upperNext {
				b.WriteRune(r)
			} else {
				b.WriteRune(r - 'A' + 'a')
			}
			upperNext = false
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			upperNext = false
		default:
			// Separators reset casing and are dropped.
			upperNext = true
		}
	}
	return b.String()
}
