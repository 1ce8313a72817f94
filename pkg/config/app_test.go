package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const acmeYAML = `
name: acme
env: PROD
outputPorts:
  - name: orders
  - name: returns
snowflake:
  warehouses:
    - name: wh1
      default: true
      warehouseSize: XSMALL
      autoSuspend: 60
datahub: true
`

func TestLoadApp(t *testing.T) {
	app, err := LoadApp(strings.NewReader(acmeYAML))
	require.NoError(t, err)

	assert.Equal(t, "acme", app.Name)
	assert.Equal(t, EnvProd, app.Env)
	assert.Equal(t, []string{"orders", "returns"}, app.PortNames())
	require.Len(t, app.Snowflake.Warehouses, 1)
	wh := app.Snowflake.Warehouses[0]
	assert.Equal(t, "wh1", wh.Name)
	assert.True(t, wh.Default)
	assert.Equal(t, "XSMALL", wh.Params["warehouseSize"])
	assert.Equal(t, 60, wh.Params["autoSuspend"])
	assert.True(t, app.Datahub)
	assert.NoError(t, app.Validate())
}

func TestLoadAppFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yml")
	require.NoError(t, os.WriteFile(path, []byte(acmeYAML), 0o600))

	app, err := LoadAppFile(path)
	require.NoError(t, err)
	assert.Equal(t, "acme", app.Name)

	_, err = LoadAppFile(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestLoadAppErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "empty document", yaml: ""},
		{name: "unknown field", yaml: "name: acme\nenv: PROD\nports: []\n"},
		{name: "wrong type", yaml: "name: acme\noutputPorts: orders\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadApp(strings.NewReader(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestEnvironmentUnmarshal(t *testing.T) {
	tests := []struct {
		value    string
		expected Environment
	}{
		{value: "PROD", expected: EnvProd},
		{value: "int", expected: EnvInt},
		{value: "0", expected: EnvProd},
		{value: "1", expected: EnvInt},
		{value: "sandbox", expected: Environment("sandbox")},
		{value: `"0"`, expected: Environment("0")},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			app, err := LoadApp(strings.NewReader("name: acme\nenv: " + tt.value + "\n"))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, app.Env)
		})
	}

	_, err := LoadApp(strings.NewReader("name: acme\nenv: 7\n"))
	assert.Error(t, err)
}

func TestAppValidate(t *testing.T) {
	valid := func() *App {
		return &App{
			Name:        "acme",
			Env:         EnvProd,
			OutputPorts: []OutputPort{{Name: "orders"}},
			Snowflake:   Snowflake{Warehouses: []Warehouse{{Name: "wh1", Default: true}}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(a *App)
		wantErr string
	}{
		{name: "valid", mutate: func(a *App) {}},
		{name: "no ports is fine", mutate: func(a *App) { a.OutputPorts = nil }},
		{name: "missing name", mutate: func(a *App) { a.Name = "" }, wantErr: "name is required"},
		{name: "bad name", mutate: func(a *App) { a.Name = "ac-me" }, wantErr: "not a valid identifier"},
		{name: "missing env", mutate: func(a *App) { a.Env = "" }, wantErr: "env is required"},
		{name: "empty port name", mutate: func(a *App) { a.OutputPorts = append(a.OutputPorts, OutputPort{}) }, wantErr: "name is required"},
		{
			name:    "duplicate port ignoring case",
			mutate:  func(a *App) { a.OutputPorts = append(a.OutputPorts, OutputPort{Name: "ORDERS"}) },
			wantErr: "duplicate output port",
		},
		{name: "public port", mutate: func(a *App) { a.OutputPorts = []OutputPort{{Name: "public"}} }, wantErr: "PUBLIC schema"},
		{
			name:    "bad warehouse name",
			mutate:  func(a *App) { a.Snowflake.Warehouses[0].Name = "wh 1" },
			wantErr: "not a valid identifier",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := valid()
			tt.mutate(app)
			err := app.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
