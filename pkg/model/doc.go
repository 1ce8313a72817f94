// Package model defines the database models of the deployment ledger.
//
// # Models
//
//   - Deployment: one recorded build of a tenant stack, versioned per tenant
//   - DeploymentResource: a graph node of a deployment, in creation order
//   - DeploymentDependency: a "must exist before" edge between nodes
//   - DeploymentGrant: a privilege grant triple of a deployment
//
// # Database Schema
//
// The schema lives in db/migrations:
//
//   - deployments
//   - deployment_resources
//   - deployment_dependencies
//   - deployment_grants
package model
