package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/dataport/pkg/config"
	"github.com/doodlesbykumbi/dataport/pkg/secret"
	"github.com/doodlesbykumbi/dataport/pkg/stack"
)

const acmeYAML = `
name: acme
env: PROD
outputPorts:
  - name: orders
snowflake:
  warehouses:
    - name: wh1
      default: true
datahub: true
`

func buildStack(t *testing.T) *stack.Stack {
	t.Helper()
	app, err := config.LoadApp(strings.NewReader(acmeYAML))
	require.NoError(t, err)
	s, err := stack.Build(app, stack.WithSecretSource(secret.Fixed("s3cret-value")))
	require.NoError(t, err)
	return s
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "text", want: FormatText},
		{in: "JSON", want: FormatJSON},
		{in: "markdown", want: FormatMarkdown},
		{in: "html", want: FormatHTML},
		{in: "yaml", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteText(t *testing.T) {
	s := buildStack(t)
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, s))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Tenant acme (PROD)\n"))
	assert.Contains(t, out, "snowflake/database")
	assert.Contains(t, out, "after snowflake/role, snowflake/warehouse/wh1")
	assert.Less(t, strings.Index(out, " snowflake/role\n"), strings.Index(out, " output-port/orders/role\n"))
	assert.Contains(t, out, "Plan: ")
	assert.NotContains(t, out, "s3cret-value")
}

func TestWriteJSON(t *testing.T) {
	s := buildStack(t)
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, s))

	var got jsonReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	sum, err := s.Summary()
	require.NoError(t, err)

	assert.Equal(t, "acme", got.Tenant)
	assert.Equal(t, "PROD", got.Env)
	assert.Len(t, got.Nodes, s.Graph.Len())
	assert.Len(t, got.Components, len(s.Graph.Components()))
	assert.Len(t, got.Layers, sum.Layers)
	assert.Equal(t, sum.Nodes, got.Summary.Nodes)
	assert.Equal(t, s.Triples(), got.Grants)
	assert.Equal(t, 0, got.Nodes[0].Layer)

	// every dependency appears earlier in the output
	seen := make(map[string]bool)
	for _, c := range got.Components {
		seen[c.ID] = true
	}
	for _, n := range got.Nodes {
		for _, dep := range n.DependsOn {
			if !seen[dep] {
				t.Errorf("%s listed before its dependency %s", n.ID, dep)
			}
		}
		seen[n.ID] = true
	}
	assert.NotContains(t, buf.String(), "s3cret-value")
}

func TestWriteMarkdown(t *testing.T) {
	s := buildStack(t)
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, s))

	out := buf.String()
	assert.Contains(t, out, "# acme (PROD)")
	assert.Contains(t, out, "## snowflake\n")
	assert.Contains(t, out, "## output-port/orders\n")
	assert.Contains(t, out, "## datahub\n")
	assert.Contains(t, out, "## Grants")
	assert.Contains(t, out, "| DATAHUB |")
}

func TestWriteHTML(t *testing.T) {
	s := buildStack(t)
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, s))

	out := buf.String()
	assert.Contains(t, out, "<h1>acme (PROD)</h1>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<code>snowflake/database</code>")
}

func TestWriteUnknownFormat(t *testing.T) {
	s := buildStack(t)
	err := Write(&bytes.Buffer{}, s, Format("pdf"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
