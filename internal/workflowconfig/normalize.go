package workflowconfig

import "strings"

// NormalizeStatus puts a status string into canonical form: lowercased,
// with underscores folded to hyphens. The loader normalizes every status
// it reads off disk; callers elsewhere (flow resolver, validator) apply
// the same normalization to incoming statuses before comparing so that
// "in_progress", "In-Progress", and "in-progress" all compare equal.
func NormalizeStatus(status string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(status)), "_", "-")
}

func normalizeSlice(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = NormalizeStatus(s)
	}
	return out
}

func normalizeContainer(c *ContainerFlows) {
	c.DefaultFlow = normalizeSlice(c.DefaultFlow)
	c.TerminalStatuses = normalizeSlice(c.TerminalStatuses)
	c.EmergencyTransitions = normalizeSlice(c.EmergencyTransitions)
	for i := range c.FlowMappings {
		c.FlowMappings[i].Tags = lowercaseSlice(c.FlowMappings[i].Tags)
	}
	if c.Flows != nil {
		normalized := make(map[string][]string, len(c.Flows))
		for name, seq := range c.Flows {
			normalized[name] = normalizeSlice(seq)
		}
		c.Flows = normalized
	}
}

func lowercaseSlice(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

// normalize canonicalizes every status string in cfg in place.
func normalize(cfg *WorkflowConfig) {
	normalizeContainer(&cfg.StatusProgression.Projects)
	normalizeContainer(&cfg.StatusProgression.Features)
	normalizeContainer(&cfg.StatusProgression.Tasks)
}
