/*
Package runner executes compiled plans.

The runner walks a compiler.Plan, resolves each node's card, feeds it the input
chosen by the fan-in policy (run input for plan inputs, the single dependency's
output, or a compiler.FanIn for several dependencies) and collects outputs,
states and advisory errors into a Report.

Card errors never stop a run. The only errors returned by Run are structural
(cyclic graph, plan/graph mismatch) or context cancellation, which is checked
between steps.

# Usage

	r := runner.New(
		runner.WithLogger(logger),
		runner.WithResolver(catalog),
		runner.WithHooks(metrics.Hooks()),
		runner.WithConcurrency(4),
	)

	report, err := r.Run(ctx, g, plan, runner.Request{Input: 0.5, Context: cctx})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(report.Output)
*/
package runner
