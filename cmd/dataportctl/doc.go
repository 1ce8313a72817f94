// Command dataportctl plans and records the Snowflake access-control graph of
// a tenant.
//
// A tenant is described by an app file:
//
//	name: acme
//	env: PROD
//	outputPorts:
//	  - name: orders
//	snowflake:
//	  warehouses:
//	    - name: wh1
//	      default: true
//	datahub: true
//
// # Usage
//
//	# Check an app file
//	dataportctl validate app.yml
//
//	# Show the resources in creation order
//	dataportctl plan app.yml -o markdown
//
//	# Prepare the ledger, then record the graph
//	dataportctl db migrate
//	dataportctl record app.yml
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string of the ledger
//   - AUDIT_DATABASE_URL: PostgreSQL connection string for audit messages
//   - DATAPORT_CONFIG_PATH: directory holding dataport.yml
//   - DATAPORT_DEPLOYMENT_ROLE: role every tenant role is granted to
//   - DATAPORT_GOVERNANCE_ROLE: role of the governance consumer
//   - DATAPORT_SECRET_LENGTH: length of generated service user passwords
//   - DATAPORT_AUDIT_ENABLED: audit toggle (default true)
//   - DATAPORT_LOG_LEVEL: debug, info, warn, error
//   - DATAPORT_LOG_FORMAT: json or console
package main
