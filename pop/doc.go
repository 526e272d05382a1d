// Package pop provides the core types for hierarchical population inference
// over gravitational-wave catalogs.
//
// # Reading Guide
//
// Start with these three files to understand the inference kernel:
//   - dataset.go: column-oriented posterior sample tables and CSV loading
//   - model.go: the population Model interface, product composition, and
//     the named model registry
//   - rng.go: deterministic per-subsystem random number generation
//
// # Architecture
//
// The pop package defines interfaces and shared types; implementations live
// in sub-packages:
//   - pop/stats/: probability densities (truncated normals, scaled betas,
//     power laws, covariant Gaussians)
//   - pop/models/: population models over masses, spins, and redshift
//   - pop/conversions/: hyper-parameter and source-parameter conversions
//   - pop/vt/: selection-effect (sensitive volume-time) estimators
//   - pop/hyperpe/: the hierarchical population likelihood
//   - pop/sampler/: adaptive Metropolis sampling of the hyper-posterior
//   - pop/backend/: numerical kernels (quadrature, grids) and parallel
//     evaluation
//
// Sub-packages register their model constructors via init() functions
// calling RegisterModel, so importing pop/models makes every named model
// available through NewModel.
package pop
