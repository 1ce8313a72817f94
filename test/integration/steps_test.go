package integration

import (
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"github.com/doodlesbykumbi/dataport/pkg/config"
	"github.com/doodlesbykumbi/dataport/pkg/graph"
	"github.com/doodlesbykumbi/dataport/pkg/ledger"
	"github.com/doodlesbykumbi/dataport/pkg/secret"
	"github.com/doodlesbykumbi/dataport/pkg/snowflake"
	"github.com/doodlesbykumbi/dataport/pkg/stack"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	ledger   ledgerBackend
	settings *config.Settings
	source   string
	stack    *stack.Stack
	buildErr error
	result   *ledger.Result
	results  []*ledger.Result
}

// NewStepsContext creates a new steps context
func NewStepsContext(backend ledgerBackend) *StepsContext {
	return &StepsContext{
		ledger:   backend,
		settings: config.Defaults(),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	// Input steps
	sc.Step(`^the app file:$`, s.theAppFile)
	sc.Step(`^the deployment role is "([^"]*)"$`, s.theDeploymentRoleIs)
	sc.Step(`^the governance role is "([^"]*)"$`, s.theGovernanceRoleIs)

	// Build steps
	sc.Step(`^I build the stack$`, s.iBuildTheStack)
	sc.Step(`^the build should fail with "([^"]*)"$`, s.theBuildShouldFailWith)
	sc.Step(`^the stack should have (\d+) resources in (\d+) components$`, s.theStackShouldHaveResources)
	sc.Step(`^the stack should have (\d+) grants$`, s.theStackShouldHaveGrants)
	sc.Step(`^the following roles should exist:$`, s.theFollowingRolesShouldExist)
	sc.Step(`^the following grants should exist:$`, s.theFollowingGrantsShouldExist)
	sc.Step(`^no grant should be made to "([^"]*)"$`, s.noGrantShouldBeMadeTo)
	sc.Step(`^every resource should come after its dependencies$`, s.everyResourceShouldComeAfterItsDependencies)
	sc.Step(`^"([^"]*)" should come after every resource of component "([^"]*)"$`, s.shouldComeAfterComponent)

	// Ledger steps
	sc.Step(`^I record the stack$`, s.iRecordTheStack)
	sc.Step(`^I record the stack with force$`, s.iRecordTheStackWithForce)
	sc.Step(`^I dry-run the stack$`, s.iDryRunTheStack)
	sc.Step(`^the ledger version should be (\d+)$`, s.theLedgerVersionShouldBe)
	sc.Step(`^the recording should be unchanged$`, s.theRecordingShouldBeUnchanged)
	sc.Step(`^the ledger should hold (\d+) deployments? for "([^"]*)"$`, s.theLedgerShouldHoldDeployments)
	sc.Step(`^the ledger should hold every resource of the last recording$`, s.theLedgerShouldHoldEveryResource)
}

// Input steps

func (s *StepsContext) theAppFile(doc *godog.DocString) error {
	s.source = doc.Content
	return nil
}

func (s *StepsContext) theDeploymentRoleIs(role string) error {
	s.settings.DeploymentRole = role
	return nil
}

func (s *StepsContext) theGovernanceRoleIs(role string) error {
	s.settings.GovernanceRole = role
	return nil
}

// Build steps

func (s *StepsContext) iBuildTheStack() error {
	s.stack, s.buildErr = nil, nil
	app, err := config.LoadApp(strings.NewReader(s.source))
	if err != nil {
		s.buildErr = err
		return nil
	}
	s.stack, s.buildErr = stack.Build(app,
		stack.WithSettings(s.settings),
		stack.WithSecretSource(secret.Fixed("integration-secret")),
	)
	return nil
}

func (s *StepsContext) built() error {
	if s.buildErr != nil {
		return fmt.Errorf("build failed: %w", s.buildErr)
	}
	if s.stack == nil {
		return fmt.Errorf("no stack has been built")
	}
	return nil
}

func (s *StepsContext) theBuildShouldFailWith(message string) error {
	if s.buildErr == nil {
		return fmt.Errorf("expected the build to fail with %q", message)
	}
	if !strings.Contains(s.buildErr.Error(), message) {
		return fmt.Errorf("expected error containing %q, got %q", message, s.buildErr.Error())
	}
	if s.stack != nil {
		return fmt.Errorf("a failed build must not return a stack")
	}
	return nil
}

func (s *StepsContext) theStackShouldHaveResources(nodes, components int) error {
	if err := s.built(); err != nil {
		return err
	}
	sum, err := s.stack.Summary()
	if err != nil {
		return err
	}
	if sum.Nodes != nodes {
		return fmt.Errorf("expected %d resources, got %d", nodes, sum.Nodes)
	}
	if sum.Components != components {
		return fmt.Errorf("expected %d components, got %d", components, sum.Components)
	}
	return nil
}

func (s *StepsContext) theStackShouldHaveGrants(grants int) error {
	if err := s.built(); err != nil {
		return err
	}
	sum, err := s.stack.Summary()
	if err != nil {
		return err
	}
	if sum.Grants != grants {
		return fmt.Errorf("expected %d grants, got %d", grants, sum.Grants)
	}
	return nil
}

func (s *StepsContext) theFollowingRolesShouldExist(table *godog.Table) error {
	if err := s.built(); err != nil {
		return err
	}
	have := make(map[string]bool)
	for _, n := range s.stack.NodesOfKind(snowflake.KindRole) {
		have[n.Spec.(snowflake.Role).Name] = true
	}
	for _, row := range table.Rows {
		name := row.Cells[0].Value
		if name == "name" {
			continue
		}
		if !have[name] {
			return fmt.Errorf("role %s does not exist", name)
		}
	}
	return nil
}

func (s *StepsContext) theFollowingGrantsShouldExist(table *godog.Table) error {
	if err := s.built(); err != nil {
		return err
	}
	have := make(map[snowflake.Triple]bool)
	for _, t := range s.stack.Triples() {
		have[t] = true
	}
	for i, row := range table.Rows {
		if i == 0 {
			continue
		}
		role, privileges, scope := row.Cells[0].Value, row.Cells[1].Value, row.Cells[2].Value
		want := snowflake.NewTriple(strings.Split(privileges, ","), role, scope)
		if !have[want] {
			return fmt.Errorf("grant %s does not exist", want)
		}
	}
	return nil
}

func (s *StepsContext) noGrantShouldBeMadeTo(role string) error {
	if err := s.built(); err != nil {
		return err
	}
	for _, t := range s.stack.Triples() {
		if t.Role == role {
			return fmt.Errorf("unexpected grant %s", t)
		}
	}
	return nil
}

func (s *StepsContext) everyResourceShouldComeAfterItsDependencies() error {
	if err := s.built(); err != nil {
		return err
	}
	sorted, err := s.stack.Graph.Sort()
	if err != nil {
		return err
	}
	position := positions(sorted)
	for _, n := range sorted {
		for _, dep := range n.DependsOn {
			if p, ok := position[dep]; ok {
				if p >= position[n.ID] {
					return fmt.Errorf("%s comes before its dependency %s", n.ID, dep)
				}
				continue
			}
			if err := s.afterComponent(position, n.ID, dep); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *StepsContext) shouldComeAfterComponent(nodeID, component string) error {
	if err := s.built(); err != nil {
		return err
	}
	sorted, err := s.stack.Graph.Sort()
	if err != nil {
		return err
	}
	return s.afterComponent(positions(sorted), nodeID, component)
}

func (s *StepsContext) afterComponent(position map[string]int, nodeID, component string) error {
	p, ok := position[nodeID]
	if !ok {
		return fmt.Errorf("resource %s does not exist", nodeID)
	}
	children := s.stack.Graph.Children(component)
	if len(children) == 0 {
		return fmt.Errorf("component %s has no resources", component)
	}
	for _, c := range children {
		if position[c.ID] >= p {
			return fmt.Errorf("%s comes before %s of component %s", nodeID, c.ID, component)
		}
	}
	return nil
}

func positions(nodes []graph.Node) map[string]int {
	out := make(map[string]int, len(nodes))
	for i, n := range nodes {
		out[n.ID] = i
	}
	return out
}

// Ledger steps

func (s *StepsContext) record(dryRun, force bool) error {
	if s.stack == nil {
		if err := s.iBuildTheStack(); err != nil {
			return err
		}
	}
	if err := s.built(); err != nil {
		return err
	}
	result, err := ledger.NewRecorder(s.ledger.store).
		WithActor("cucumber").
		WithDryRun(dryRun).
		WithForce(force).
		Record(s.stack, s.source)
	if err != nil {
		return err
	}
	s.result = result
	s.results = append(s.results, result)
	return nil
}

func (s *StepsContext) iRecordTheStack() error {
	return s.record(false, false)
}

func (s *StepsContext) iRecordTheStackWithForce() error {
	return s.record(false, true)
}

func (s *StepsContext) iDryRunTheStack() error {
	return s.record(true, false)
}

func (s *StepsContext) theLedgerVersionShouldBe(version int) error {
	if s.result == nil {
		return fmt.Errorf("nothing has been recorded")
	}
	if s.result.Version != version {
		return fmt.Errorf("expected ledger version %d, got %d", version, s.result.Version)
	}
	return nil
}

func (s *StepsContext) theRecordingShouldBeUnchanged() error {
	if s.result == nil {
		return fmt.Errorf("nothing has been recorded")
	}
	if !s.result.Unchanged {
		return fmt.Errorf("expected the recording to be unchanged")
	}
	if len(s.results) > 1 && s.result.RunID != s.results[len(s.results)-2].RunID {
		return fmt.Errorf("unchanged recording should report the previous run, got %s", s.result.RunID)
	}
	return nil
}

func (s *StepsContext) theLedgerShouldHoldDeployments(count int, tenant string) error {
	n, err := s.ledger.deployments(tenant)
	if err != nil {
		return err
	}
	if n != count {
		return fmt.Errorf("expected %d deployment(s) for %s, got %d", count, tenant, n)
	}
	return nil
}

func (s *StepsContext) theLedgerShouldHoldEveryResource() error {
	if err := s.built(); err != nil {
		return err
	}
	if s.result == nil {
		return fmt.Errorf("nothing has been recorded")
	}
	n, err := s.ledger.resources(s.result.RunID)
	if err != nil {
		return err
	}
	if n != s.stack.Graph.Len() {
		return fmt.Errorf("expected %d resources in the ledger, got %d", s.stack.Graph.Len(), n)
	}
	return nil
}
