// Package config provides configuration management for dataport.
//
// Two kinds of configuration live here:
//
//   - App: the deployment input describing one tenant (name, environment,
//     output ports, warehouses, governance integration). Loaded from YAML.
//   - Settings: how the tool itself behaves (external role names, secret
//     length, ledger database, audit, logging).
//
// # Settings Sources
//
// Settings are resolved in order, later sources winning:
//
//   - Built-in defaults
//   - Configuration file ($DATAPORT_CONFIG_PATH/dataport.yml)
//   - Environment variables (a .env file in the working directory is loaded first)
//
// # Key Environment Variables
//
//   - DATAPORT_DEPLOYMENT_ROLE: role the tenant role is granted to (default DEPLOYMENT)
//   - DATAPORT_GOVERNANCE_ROLE: governance consumer role (default DATAHUB)
//   - DATABASE_URL: ledger database connection
//   - DATAPORT_LOG_LEVEL: Logging verbosity
package config
