package integrators

import "github.com/san-kum/evsim/internal/dynamo"

// eulerStep returns x + dt*f(x, t).
func eulerStep[V dynamo.Vector[V]](f dynamo.Derivative[V], x V, t, dt float64) V {
	return x.Add(f(x, t).Scale(dt))
}
