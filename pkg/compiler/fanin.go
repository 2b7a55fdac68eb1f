package compiler

// FanIn is the input of a node with two or more dependencies: every
// dependency's output keyed by the dependency's node id.
type FanIn map[string]any

// GatherInput applies the fan-in policy to a step. Inputs receive the run
// input, a single dependency passes its output through, and several
// dependencies are collected into a FanIn. Nothing is dropped.
func GatherInput(step Step, runInput any, outputs map[string]any) any {
	switch len(step.Dependencies) {
	case 0:
		return runInput
	case 1:
		return outputs[step.Dependencies[0]]
	default:
		in := make(FanIn, len(step.Dependencies))
		for _, dep := range step.Dependencies {
			in[dep] = outputs[dep]
		}
		return in
	}
}

// Collect shapes the result of a run: the single output node's value, or a
// FanIn of every output node when there are several.
func (p *Plan) Collect(outputs map[string]any) any {
	switch len(p.Outputs) {
	case 0:
		return nil
	case 1:
		return outputs[p.Outputs[0]]
	default:
		res := make(FanIn, len(p.Outputs))
		for _, id := range p.Outputs {
			res[id] = outputs[id]
		}
		return res
	}
}
