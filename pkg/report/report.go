// Package report renders a built stack for humans and machines.
package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/doodlesbykumbi/dataport/pkg/graph"
	"github.com/doodlesbykumbi/dataport/pkg/snowflake"
	"github.com/doodlesbykumbi/dataport/pkg/stack"
)

// ErrUnknownFormat is returned by ParseFormat.
var ErrUnknownFormat = errors.New("unknown output format")

// Format selects a renderer.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Formats lists the accepted formats.
func Formats() []Format {
	return []Format{FormatText, FormatJSON, FormatMarkdown, FormatHTML}
}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats() {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Write renders s to w in format f.
func Write(w io.Writer, s *stack.Stack, f Format) error {
	switch f {
	case FormatText:
		return WriteText(w, s)
	case FormatJSON:
		return WriteJSON(w, s)
	case FormatMarkdown:
		return WriteMarkdown(w, s)
	case FormatHTML:
		return WriteHTML(w, s)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// WriteText writes the nodes in creation order, one per line, followed by a
// summary.
func WriteText(w io.Writer, s *stack.Stack) error {
	sorted, err := s.Graph.Sort()
	if err != nil {
		return err
	}
	layerOf, err := s.Graph.LayerOf()
	if err != nil {
		return err
	}
	sum, err := s.Summary()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Tenant %s (%s)\n\n", s.App.Name, s.App.Env)
	for i, n := range sorted {
		fmt.Fprintf(w, "%3d  [%d] + %-26s %s\n", i+1, layerOf[n.ID], n.Kind, n.ID)
		if len(n.DependsOn) > 0 {
			fmt.Fprintf(w, "          after %s\n", strings.Join(n.DependsOn, ", "))
		}
	}
	_, err = fmt.Fprintf(w, "\nPlan: %d resources (%d grants) in %d components, %d layers.\n",
		sum.Nodes, sum.Grants, sum.Components, sum.Layers)
	return err
}

type jsonNode struct {
	ID        string   `json:"id"`
	Kind      string   `json:"kind"`
	Component string   `json:"component,omitempty"`
	Layer     int      `json:"layer"`
	DependsOn []string `json:"depends_on,omitempty"`
	Spec      any      `json:"spec,omitempty"`
}

type jsonReport struct {
	Tenant     string             `json:"tenant"`
	Env        string             `json:"env"`
	Components []graph.Component  `json:"components"`
	Nodes      []jsonNode         `json:"nodes"`
	Layers     [][]string         `json:"layers"`
	Grants     []snowflake.Triple `json:"grants"`
	Summary    stack.Summary      `json:"summary"`
}

// WriteJSON writes nodes in creation order, the layer partition, the grant
// triples and the summary as indented JSON.
func WriteJSON(w io.Writer, s *stack.Stack) error {
	sorted, err := s.Graph.Sort()
	if err != nil {
		return err
	}
	layers, err := s.Graph.Layers()
	if err != nil {
		return err
	}
	layerOf, err := s.Graph.LayerOf()
	if err != nil {
		return err
	}
	sum, err := s.Summary()
	if err != nil {
		return err
	}

	jr := jsonReport{
		Tenant:     s.App.Name,
		Env:        string(s.App.Env),
		Components: s.Graph.Components(),
		Nodes:      make([]jsonNode, 0, len(sorted)),
		Layers:     make([][]string, 0, len(layers)),
		Grants:     s.Triples(),
		Summary:    sum,
	}
	for _, n := range sorted {
		jr.Nodes = append(jr.Nodes, jsonNode{
			ID:        n.ID,
			Kind:      n.Kind,
			Component: n.Parent,
			Layer:     layerOf[n.ID],
			DependsOn: n.DependsOn,
			Spec:      n.Spec,
		})
	}
	for _, layer := range layers {
		ids := make([]string, len(layer))
		for i, n := range layer {
			ids[i] = n.ID
		}
		jr.Layers = append(jr.Layers, ids)
	}

	data, err := json.MarshalIndent(jr, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

// WriteMarkdown writes one table per component plus a grant table.
func WriteMarkdown(w io.Writer, s *stack.Stack) error {
	sorted, err := s.Graph.Sort()
	if err != nil {
		return err
	}
	layerOf, err := s.Graph.LayerOf()
	if err != nil {
		return err
	}
	sum, err := s.Summary()
	if err != nil {
		return err
	}

	byComponent := make(map[string][]graph.Node)
	for _, n := range sorted {
		byComponent[n.Parent] = append(byComponent[n.Parent], n)
	}

	fmt.Fprintf(w, "# %s (%s)\n\n", s.App.Name, s.App.Env)
	fmt.Fprintf(w, "%d resources, %d grants, %d layers.\n", sum.Nodes, sum.Grants, sum.Layers)

	for _, c := range s.Graph.Components() {
		nodes := byComponent[c.ID]
		if len(nodes) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n## %s\n\n", c.ID)
		fmt.Fprintf(w, "Type `%s`\n\n", c.Type)
		fmt.Fprintln(w, "| Layer | Kind | Resource | After |")
		fmt.Fprintln(w, "| --- | --- | --- | --- |")
		for _, n := range nodes {
			fmt.Fprintf(w, "| %d | %s | `%s` | %s |\n", layerOf[n.ID], n.Kind, n.ID, codeList(n.DependsOn))
		}
	}

	triples := s.Triples()
	if len(triples) > 0 {
		fmt.Fprintln(w, "\n## Grants")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "| Role | Privileges | Scope |")
		fmt.Fprintln(w, "| --- | --- | --- |")
		for _, t := range triples {
			fmt.Fprintf(w, "| %s | %s | %s |\n", escapeCell(t.Role), escapeCell(t.Privileges), escapeCell(t.Scope))
		}
	}
	return nil
}

// WriteHTML converts the Markdown report to HTML.
func WriteHTML(w io.Writer, s *stack.Stack) error {
	var md bytes.Buffer
	if err := WriteMarkdown(&md, s); err != nil {
		return err
	}
	converter := goldmark.New(goldmark.WithExtensions(extension.Table))
	if err := converter.Convert(md.Bytes(), w); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

func codeList(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = "`" + id + "`"
	}
	return strings.Join(parts, ", ")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
