// Package physics provides the right-hand sides simulated by evsim.
//
// Each model implements [dynamo.System]:
//
//   - [LotkaVolterra]: predator-prey populations
//   - [Ramp]: dx/dt = 2t, whose exact solution is x0 + t²
//   - [Pendulum]: damped simple pendulum
//   - [VanDerPol]: relaxation oscillator
//   - [Lorenz]: butterfly attractor
//
// All models implement [dynamo.Configurable]. Models with a conserved
// quantity also implement [dynamo.Hamiltonian]; the driver uses it to report
// drift between the first and last state.
package physics
