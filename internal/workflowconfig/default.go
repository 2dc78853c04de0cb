package workflowconfig

// DefaultWorkflow returns the bundled fallback workflow config, used
// whenever no workflow.yaml is found at the configured directory, or the
// file on disk fails to parse. Every container type's default_flow is
// non-empty, satisfying the mandatory floor.
func DefaultWorkflow() *WorkflowConfig {
	return &WorkflowConfig{
		AutoCascade: AutoCascade{
			Enabled:  true,
			MaxDepth: DefaultMaxCascadeDepth,
			StartCascade: struct {
				Enabled bool `yaml:"enabled"`
			}{Enabled: true},
		},
		StatusProgression: StatusProgression{
			Projects: ContainerFlows{
				DefaultFlow:          []string{"planning", "active", "completed"},
				TerminalStatuses:     []string{"completed", "cancelled"},
				EmergencyTransitions: []string{"cancelled"},
			},
			Features: ContainerFlows{
				DefaultFlow:          []string{"backlog", "in-progress", "in-review", "done"},
				TerminalStatuses:     []string{"done", "cancelled"},
				EmergencyTransitions: []string{"cancelled"},
				FlowMappings: []FlowMapping{
					{Tags: []string{"prototype", "spike"}, Flow: "rapid_prototype_flow"},
					{Tags: []string{"needs-review"}, Flow: "with_review_flow"},
					{Tags: []string{"bugfix", "hotfix"}, Flow: "bug_fix_flow"},
				},
				Flows: map[string][]string{
					"rapid_prototype_flow": {"backlog", "in-progress", "done"},
					"with_review_flow":     {"backlog", "in-progress", "in-review", "approved", "done"},
					"bug_fix_flow":         {"backlog", "in-progress", "verifying", "done"},
				},
			},
			Tasks: ContainerFlows{
				DefaultFlow:          []string{"pending", "in-progress", "in-review", "completed"},
				TerminalStatuses:     []string{"completed", "cancelled"},
				EmergencyTransitions: []string{"cancelled", "blocked"},
				FlowMappings: []FlowMapping{
					{Tags: []string{"bugfix", "hotfix"}, Flow: "bug_fix_flow"},
				},
				Flows: map[string][]string{
					"bug_fix_flow": {"pending", "in-progress", "verifying", "completed"},
				},
			},
		},
	}
}

// DefaultMaxCascadeDepth is the cascade recursion cap applied when the
// loaded config doesn't specify one.
const DefaultMaxCascadeDepth = 10
