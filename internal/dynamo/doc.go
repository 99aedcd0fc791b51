// Package dynamo provides the core primitives shared by the integrators and
// the simulation driver.
//
// The package defines the vector-space capability the steppers are written
// against and the concrete state types that satisfy it:
//
//   - [Vector]: generic constraint (add, subtract, scale, divide, norm)
//   - [State]: fixed-size vector of float64 with an L1 norm
//   - [Scalar]: single float64 for one-variable systems
//   - [Derivative]: right-hand side f(x, t) of dx/dt = f(x, t)
//   - [System]: named model exposing a [Derivative] over [State]
//
// # Example
//
//	lv := physics.NewLotkaVolterra()
//	stepper, err := integrators.NewEventStepper(lv.DefaultState(), lv.Derive, 0.01, 1e-3)
//	if err != nil {
//	    return err
//	}
//	stepper.InsertEvent(4, "recurring_drought", 3)
//
// # Thread Safety
//
// State values are plain slices. Steppers built on them are NOT thread-safe;
// run one stepper per goroutine.
package dynamo
