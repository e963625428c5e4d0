// Package eagle is a Go implementation of the Eagle Strategy, a
// population-based stochastic optimizer for continuous black-box problems.
//
// The optimizer maintains a pool of candidate solutions that attract and
// repel each other based on relative reward, with a per-member perturbation
// schedule that shrinks as a member stalls and a trimming pass that
// re-randomizes exhausted members while protecting the current best.
//
// Key Components:
//
//   - Core: Problem definitions, box bounds, and batch objective types
//     shared by every layer.
//
//   - Optimizers: The vectorized Eagle Strategy itself plus a budget-driven
//     VectorizedOptimizer that runs any suggest/update strategy against a
//     batch objective.
//
//   - Evaluation: Helpers for turning per-point objective functions into
//     batch objectives, serially or with bounded parallelism.
//
//   - Config: YAML-backed configuration with validation for optimizer,
//     logging, and storage settings.
//
//   - Store: SQLite-backed trial history so finished runs can be inspected
//     after the process exits.
//
// Basic usage:
//
//	problem := &core.ProblemStatement{Name: "sphere"}
//	for i := 0; i < 4; i++ {
//		problem.AddFloatParameter(fmt.Sprintf("x%d", i), -5, 5)
//	}
//
//	opt := optimizers.NewVectorizedOptimizer(
//		optimizers.VectorizedEagleStrategyFactory{},
//		optimizers.WithMaxEvaluations(2000))
//
//	if err := opt.Optimize(ctx, problem, objective); err != nil {
//		// handle err
//	}
//	best, reward := opt.BestParameters(), opt.BestReward()
package eagle
