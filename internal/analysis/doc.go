// Package analysis post-processes recorded trajectories.
//
// Adaptive runs are sampled at uneven times, so spectral tools first
// resample onto a uniform grid.
package analysis
