package integrators_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/evsim/internal/dynamo"
	"github.com/san-kum/evsim/internal/integrators"
)

const maxCalls = 200000

type firing struct {
	t     float64
	label string
}

func constant(_ dynamo.Scalar, _ float64) dynamo.Scalar { return 1 }

func lotkaVolterra(x dynamo.State, _ float64) dynamo.State {
	return dynamo.State{
		1.5*x[0] - x[0]*x[1],
		-3*x[1] + x[0]*x[1],
	}
}

// runUntil steps s until its time reaches end and returns every event it
// stopped on.
func runUntil[V dynamo.Vector[V]](s *integrators.EventStepper[V], end float64) []firing {
	var fired []firing
	for calls := 0; s.Time() < end; calls++ {
		Expect(calls).To(BeNumerically("<", maxCalls), "stepper stalled at t=%g", s.Time())
		s.Step()
		if s.IsEvent() {
			fired = append(fired, firing{s.Time(), s.Event()})
		}
	}
	return fired
}

var _ = Describe("EventStepper", func() {
	var stepper *integrators.EventStepper[dynamo.Scalar]

	BeforeEach(func() {
		var err error
		stepper, err = integrators.NewEventStepper[dynamo.Scalar](0, constant, 0.01, 1e-3)
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects invalid step bounds", func() {
		_, err := integrators.NewEventStepper[dynamo.Scalar](0, constant, 1e-3, 0.01)
		Expect(err).To(MatchError(dynamo.ErrInvalidConfiguration))
	})

	It("rejects negative recurrence intervals", func() {
		Expect(stepper.InsertEvent(1, "bad", -2)).To(MatchError(dynamo.ErrNegativeRecurrence))
		Expect(stepper.Pending()).To(BeZero())
	})

	It("rejects recurrences too small to move time", func() {
		Expect(stepper.InsertEvent(0.5, "tick", 1e-300)).To(MatchError(dynamo.ErrInvalidConfiguration))
		Expect(stepper.Pending()).To(BeZero())
		Expect(runUntil(stepper, 1)).To(BeEmpty())
	})

	It("reports no event before anything fires", func() {
		Expect(stepper.IsEvent()).To(BeFalse())
		Expect(stepper.Event()).To(BeEmpty())
		stepper.Step()
		Expect(stepper.IsEvent()).To(BeFalse())
		Expect(stepper.Event()).To(BeEmpty())
	})

	Context("with a single event", func() {
		BeforeEach(func() {
			Expect(stepper.InsertEvent(0.5, "ping", 0)).To(Succeed())
		})

		It("lands exactly on the event time without overshooting", func() {
			hits := 0
			for calls := 0; stepper.Time() < 1; calls++ {
				Expect(calls).To(BeNumerically("<", maxCalls))
				before := stepper.Time()
				stepper.Step()
				if before < 0.5 {
					Expect(stepper.Time()).To(BeNumerically("<=", 0.5))
				}
				if stepper.IsEvent() {
					hits++
					Expect(stepper.Time()).To(Equal(0.5))
					Expect(stepper.Event()).To(Equal("ping"))
				}
			}
			Expect(hits).To(Equal(1))
			Expect(stepper.Pending()).To(BeZero())
		})

		It("clears the flag on the following step", func() {
			runUntil(stepper, 0.5)
			Expect(stepper.IsEvent()).To(BeTrue())
			stepper.Step()
			Expect(stepper.IsEvent()).To(BeFalse())
			Expect(stepper.Event()).To(BeEmpty())
			Expect(stepper.Time()).To(BeNumerically(">", 0.5))
		})

		It("keeps dt inside its bounds and time non-decreasing", func() {
			prev := stepper.Time()
			for stepper.Time() < 1 {
				stepper.Step()
				Expect(stepper.Dt()).To(BeNumerically(">=", stepper.DtMin()))
				Expect(stepper.Dt()).To(BeNumerically("<=", stepper.DtMax()))
				Expect(stepper.Time()).To(BeNumerically(">=", prev))
				prev = stepper.Time()
			}
		})
	})

	It("fires an event scheduled at the current time without advancing", func() {
		Expect(stepper.InsertEvent(0, "start", 0)).To(Succeed())
		stepper.Step()
		Expect(stepper.IsEvent()).To(BeTrue())
		Expect(stepper.Event()).To(Equal("start"))
		Expect(stepper.Time()).To(BeZero())
		Expect(stepper.Steps()).To(Equal(1))
		Expect(stepper.Dt()).To(Equal(stepper.DtMin()))
		Expect(stepper.Stats().Landings).To(Equal(1))
	})

	It("fires a past-due event without moving time backwards", func() {
		runUntil(stepper, 1)
		now := stepper.Time()
		Expect(stepper.InsertEvent(0.5, "late", 0)).To(Succeed())
		stepper.Step()
		Expect(stepper.IsEvent()).To(BeTrue())
		Expect(stepper.Event()).To(Equal("late"))
		Expect(stepper.Time()).To(Equal(now))
	})

	It("fires in the same call when a normal step ends on the event", func() {
		s, err := integrators.NewEventStepper(dynamo.State{1}, func(x dynamo.State, _ float64) dynamo.State {
			return dynamo.State{0}
		}, 1, 0.25)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.InsertEvent(2, "edge", 0)).To(Succeed())

		for i := 0; i < 7; i++ {
			s.Step()
			Expect(s.IsEvent()).To(BeFalse())
		}
		s.Step()
		Expect(s.IsEvent()).To(BeTrue())
		Expect(s.Time()).To(Equal(2.0))
		Expect(s.Steps()).To(Equal(8))
		Expect(s.Stats().Landings).To(BeZero())
	})

	It("drains simultaneous events one per call with time frozen", func() {
		Expect(stepper.InsertEvent(5, "a", 0)).To(Succeed())
		Expect(stepper.InsertEvent(5, "b", 0)).To(Succeed())

		for !stepper.IsEvent() {
			stepper.Step()
		}
		Expect(stepper.Time()).To(Equal(5.0))
		Expect(stepper.Event()).To(Equal("a"))
		steps := stepper.Steps()

		stepper.Step()
		Expect(stepper.IsEvent()).To(BeTrue())
		Expect(stepper.Event()).To(Equal("b"))
		Expect(stepper.Time()).To(Equal(5.0))
		Expect(stepper.Steps()).To(Equal(steps))

		stepper.Step()
		Expect(stepper.IsEvent()).To(BeFalse())
		Expect(stepper.Time()).To(BeNumerically(">", 5.0))
		Expect(stepper.Steps()).To(Equal(steps + 1))
	})

	It("re-fires recurring events at every interval", func() {
		Expect(stepper.InsertEvent(4, "recurring_drought", 3)).To(Succeed())
		fired := runUntil(stepper, 20)

		Expect(fired).To(Equal([]firing{
			{4, "recurring_drought"},
			{7, "recurring_drought"},
			{10, "recurring_drought"},
			{13, "recurring_drought"},
			{16, "recurring_drought"},
			{19, "recurring_drought"},
		}))
		Expect(stepper.Upcoming()).To(HaveLen(1))
		Expect(stepper.Upcoming()[0].Time).To(Equal(22.0))
	})

	It("stops firing once events are cleared", func() {
		Expect(stepper.InsertEvent(0.2, "tick", 0.1)).To(Succeed())
		runUntil(stepper, 0.2)
		stepper.ClearEvents()
		Expect(runUntil(stepper, 1)).To(BeEmpty())
	})

	It("matches the plain adaptive stepper when no events are queued", func() {
		plain, err := integrators.NewAdaptive[dynamo.Scalar](0, constant, 0.01, 1e-3)
		Expect(err).NotTo(HaveOccurred())
		for i := 0; i < 500; i++ {
			plain.Step()
			stepper.Step()
		}
		Expect(stepper.Time()).To(Equal(plain.Time()))
		Expect(stepper.State()).To(Equal(plain.State()))
		Expect(stepper.Dt()).To(Equal(plain.Dt()))
		Expect(stepper.Steps()).To(Equal(plain.Steps()))
	})

	Describe("Lotka-Volterra with droughts", func() {
		var lv *integrators.EventStepper[dynamo.State]

		BeforeEach(func() {
			var err error
			lv, err = integrators.NewEventStepper(dynamo.State{10, 4}, lotkaVolterra, 0.01, 1e-3)
			Expect(err).NotTo(HaveOccurred())
			Expect(lv.InsertEvent(10, "large_drought", 0)).To(Succeed())
			Expect(lv.InsertEvent(4, "recurring_drought", 3)).To(Succeed())
		})

		It("applies each drought exactly once per occurrence", func() {
			var fired []firing
			for calls := 0; lv.Time() < 20; calls++ {
				Expect(calls).To(BeNumerically("<", maxCalls))
				if lv.IsEvent() {
					prey := lv.State()[0]
					switch lv.Event() {
					case "large_drought":
						lv.State()[0] *= 0.3
					case "recurring_drought":
						lv.State()[0] *= 0.5
					}
					Expect(lv.State()[0]).To(BeNumerically("<", prey))
					fired = append(fired, firing{lv.Time(), lv.Event()})
				}
				lv.Step()
			}

			Expect(fired).To(Equal([]firing{
				{4, "recurring_drought"},
				{7, "recurring_drought"},
				{10, "large_drought"},
				{10, "recurring_drought"},
				{13, "recurring_drought"},
				{16, "recurring_drought"},
				{19, "recurring_drought"},
			}))
			Expect(lv.State().IsValid()).To(BeTrue())
			Expect(lv.State()[0]).To(BeNumerically(">", 0))
			Expect(lv.State()[1]).To(BeNumerically(">", 0))
		})
	})
})
