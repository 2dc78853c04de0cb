package workflowconfig

// FlowMapping binds a set of tags to the name of the flow an entity with
// any of those tags should use instead of the container type's
// default_flow. Declaration order is significant: the first mapping
// whose tag set shares a tag with the entity wins.
type FlowMapping struct {
	Tags []string `yaml:"tags"`
	Flow string   `yaml:"flow"`
}

// ContainerFlows is the per-container-type section of the workflow
// config: projects, features, or tasks each get one of these.
type ContainerFlows struct {
	DefaultFlow          []string            `yaml:"default_flow"`
	TerminalStatuses     []string            `yaml:"terminal_statuses"`
	EmergencyTransitions []string            `yaml:"emergency_transitions"`
	FlowMappings         []FlowMapping       `yaml:"flow_mappings"`
	// AllowBackward permits a transition to move to an earlier position
	// in the active flow than the entity's current status. Unset (the
	// zero value, false) is the documented default: backward movement
	// requires an emergency transition or an explicit config opt-in,
	// never falls out of ordinary forward-progression logic.
	AllowBackward bool                `yaml:"allow_backward"`
	Flows         map[string][]string `yaml:",inline"`
}

// AutoCascade controls whether and how deep the cascade engine is
// allowed to recurse, and whether it fires on the very first child-start
// event.
type AutoCascade struct {
	Enabled      bool `yaml:"enabled"`
	MaxDepth     int  `yaml:"max_depth"`
	StartCascade struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"start_cascade"`
}

// StatusProgression is the `status_progression` top-level YAML key.
type StatusProgression struct {
	Tasks    ContainerFlows `yaml:"tasks"`
	Features ContainerFlows `yaml:"features"`
	Projects ContainerFlows `yaml:"projects"`
}

// WorkflowConfig is the fully parsed, in-memory projection of the
// workflow YAML: flows, flow mappings, terminal/emergency statuses, and
// the cascade toggles, per container type.
type WorkflowConfig struct {
	AutoCascade       AutoCascade       `yaml:"auto_cascade"`
	StatusProgression StatusProgression `yaml:"status_progression"`
}

// ContainerType names which ContainerFlows section applies.
type ContainerType string

const (
	ContainerProject ContainerType = "project"
	ContainerFeature ContainerType = "feature"
	ContainerTask    ContainerType = "task"
)

// For looks up the ContainerFlows section for a container type. Returns
// the zero value for an unrecognized type; callers should treat that as
// "no flow configured" rather than panic.
func (w *WorkflowConfig) For(t ContainerType) ContainerFlows {
	switch t {
	case ContainerProject:
		return w.StatusProgression.Projects
	case ContainerFeature:
		return w.StatusProgression.Features
	case ContainerTask:
		return w.StatusProgression.Tasks
	default:
		return ContainerFlows{}
	}
}

// NamedFlow returns the ordered status sequence for a named flow,
// including the synthetic name "default_flow" which resolves to
// DefaultFlow. ok is false if the name isn't defined for this container.
func (c ContainerFlows) NamedFlow(name string) (sequence []string, ok bool) {
	if name == "" || name == "default_flow" {
		return c.DefaultFlow, len(c.DefaultFlow) > 0
	}
	seq, ok := c.Flows[name]
	return seq, ok
}
