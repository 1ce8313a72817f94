package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/doodlesbykumbi/dataport/pkg/config"
	"github.com/doodlesbykumbi/dataport/pkg/stack"
)

// buildFromFile reads an app file and builds its stack. The raw file
// contents are returned for hashing by the ledger.
func buildFromFile(filename string) (*stack.Stack, []byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read app file: %w", err)
	}
	app, err := config.LoadApp(bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}
	s, err := stack.Build(app, stack.WithSettings(settings), stack.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return s, data, nil
}
