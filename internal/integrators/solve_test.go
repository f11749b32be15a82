package integrators_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/lotkasim/internal/dynamo"
	"github.com/san-kum/lotkasim/internal/integrators"
	"github.com/san-kum/lotkasim/internal/physics"
)

func zeroField(_ float64, y dynamo.State) dynamo.State {
	return make(dynamo.State, len(y))
}

func constantField(c dynamo.State) dynamo.Field {
	return func(_ float64, _ dynamo.State) dynamo.State { return c.Clone() }
}

var _ = Describe("Solve", func() {
	var lv *physics.LotkaVolterra

	BeforeEach(func() {
		lv = physics.NewLotkaVolterra()
	})

	Context("with zero steps", func() {
		It("returns only the initial condition", func() {
			y0 := dynamo.State{40, 9}
			traj, err := integrators.Solve(lv.Field(), 1.5, y0, 0.1, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(traj).To(HaveLen(1))
			Expect(traj[0].T).To(Equal(1.5))
			Expect(traj[0].Y).To(Equal(y0))
		})
	})

	Context("with n steps", func() {
		It("returns n+1 samples spaced by dt", func() {
			traj, err := integrators.Solve(lv.Field(), 0, dynamo.State{40, 9}, 0.1, 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(traj).To(HaveLen(101))
			for i, s := range traj {
				Expect(s.T).To(BeNumerically("~", float64(i)*0.1, 1e-12))
				Expect(s.Y).To(HaveLen(2))
			}
		})

		It("accumulates time by repeated addition", func() {
			traj, err := integrators.Solve(lv.Field(), 0, dynamo.State{40, 9}, 0.1, 100)
			Expect(err).NotTo(HaveOccurred())

			t := 0.0
			for i := 0; i < 100; i++ {
				t += 0.1
			}
			Expect(traj.Final().T).To(Equal(t))
			Expect(traj.Final().T).NotTo(Equal(10.0))
		})
	})

	It("keeps the state constant under the zero field", func() {
		y0 := dynamo.State{3, -7, 11}
		traj, err := integrators.Solve(zeroField, 0, y0, 0.25, 40)
		Expect(err).NotTo(HaveOccurred())
		for _, s := range traj {
			Expect(s.Y).To(Equal(y0))
		}
	})

	It("reduces to exact Euler integration under a constant field", func() {
		c := dynamo.State{0.5, -2, 0}
		y0 := dynamo.State{1, 1, 1}
		dt := 0.1
		traj, err := integrators.Solve(constantField(c), 0, y0, dt, 50)
		Expect(err).NotTo(HaveOccurred())
		for i, s := range traj {
			for j := range c {
				want := y0[j] + float64(i)*dt*c[j]
				Expect(s.Y[j]).To(BeNumerically("~", want, 1e-9))
			}
		}
	})

	It("matches the reference first step of the predator-prey model", func() {
		k1 := lv.Derive(0, dynamo.State{40, 9})
		Expect(k1[0]).To(BeNumerically("~", -3.2, 1e-12))
		Expect(k1[1]).To(BeNumerically("~", 2.7, 1e-12))

		traj, err := integrators.Solve(lv.Field(), 0, dynamo.State{40, 9}, 0.1, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(traj).To(HaveLen(2))
		Expect(traj[1].T).To(BeNumerically("~", 0.1, 1e-15))
		Expect(traj[1].Y[0]).To(BeNumerically("~", 39.67049570606905, 1e-9))
		Expect(traj[1].Y[1]).To(BeNumerically("~", 9.272577678817102, 1e-9))
	})

	It("matches the reference run of 100 steps", func() {
		traj, err := integrators.Solve(lv.Field(), 0, dynamo.State{40, 9}, 0.1, 100)
		Expect(err).NotTo(HaveOccurred())
		Expect(traj.Final().Y[0]).To(BeNumerically("~", 2.8968951901163025, 1e-9))
		Expect(traj.Final().Y[1]).To(BeNumerically("~", 17.84895459121016, 1e-9))
	})

	It("is deterministic", func() {
		a, err := integrators.Solve(lv.Field(), 0, dynamo.State{40, 9}, 0.1, 200)
		Expect(err).NotTo(HaveOccurred())
		b, err := integrators.Solve(lv.Field(), 0, dynamo.State{40, 9}, 0.1, 200)
		Expect(err).NotTo(HaveOccurred())
		for i := range a {
			Expect(math.Float64bits(a[i].T)).To(Equal(math.Float64bits(b[i].T)))
			for j := range a[i].Y {
				Expect(math.Float64bits(a[i].Y[j])).To(Equal(math.Float64bits(b[i].Y[j])))
			}
		}
	})

	It("integrates backward with a negative dt", func() {
		forward, err := integrators.Solve(lv.Field(), 0, dynamo.State{40, 9}, 0.1, 100)
		Expect(err).NotTo(HaveOccurred())

		end := forward.Final()
		backward, err := integrators.Solve(lv.Field(), end.T, end.Y, -0.1, 100)
		Expect(err).NotTo(HaveOccurred())
		Expect(backward.Final().T).To(BeNumerically("~", 0, 1e-9))

		for i := range backward {
			mirror := forward[len(forward)-1-i]
			Expect(backward[i].T).To(BeNumerically("~", mirror.T, 1e-9))
			Expect(backward[i].Y[0]).To(BeNumerically("~", mirror.Y[0], 1e-6))
			Expect(backward[i].Y[1]).To(BeNumerically("~", mirror.Y[1], 1e-6))
		}
	})

	It("does not alias the caller's initial state", func() {
		y0 := dynamo.State{40, 9}
		traj, err := integrators.Solve(lv.Field(), 0, y0, 0.1, 3)
		Expect(err).NotTo(HaveOccurred())

		y0[0] = -1
		Expect(traj[0].Y[0]).To(Equal(40.0))
		traj[1].Y[0] = 99
		Expect(traj[2].Y[0]).NotTo(Equal(99.0))
	})

	It("surfaces non-finite values instead of failing", func() {
		blowup := func(_ float64, y dynamo.State) dynamo.State { return dynamo.State{y[0] * y[0]} }
		traj, err := integrators.Solve(blowup, 0, dynamo.State{1e200}, 1, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(traj).To(HaveLen(4))
		Expect(traj.IsValid()).To(BeFalse())
	})

	DescribeTable("rejects invalid arguments",
		func(y0 dynamo.State, dt float64, steps int) {
			_, err := integrators.Solve(lv.Field(), 0, y0, dt, steps)
			Expect(err).To(MatchError(dynamo.ErrInvalidArgument))
		},
		Entry("negative steps", dynamo.State{40, 9}, 0.1, -1),
		Entry("step count overflowing the sample count", dynamo.State{40, 9}, 0.1, math.MaxInt),
		Entry("zero dt", dynamo.State{40, 9}, 0.0, 10),
		Entry("NaN dt", dynamo.State{40, 9}, math.NaN(), 10),
		Entry("infinite dt", dynamo.State{40, 9}, math.Inf(1), 10),
		Entry("empty state", dynamo.State{}, 0.1, 10),
	)

	It("rejects a nil field", func() {
		_, err := integrators.Solve(nil, 0, dynamo.State{1}, 0.1, 1)
		Expect(err).To(MatchError(dynamo.ErrInvalidArgument))
	})
})

var _ = Describe("SolveSystem", func() {
	It("rejects an initial state of the wrong length", func() {
		_, err := integrators.SolveSystem(physics.NewLotkaVolterra(), 0, dynamo.State{40, 9, 1}, 0.1, 10)
		Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
		Expect(err).To(MatchError(dynamo.ErrInvalidArgument))
	})

	It("holds the equilibrium fixed", func() {
		lv := physics.NewLotkaVolterra()
		eq := lv.Equilibrium()
		traj, err := integrators.SolveSystem(lv, 0, eq, 0.1, 50)
		Expect(err).NotTo(HaveOccurred())
		Expect(traj.Final().Y[0]).To(BeNumerically("~", eq[0], 1e-12))
		Expect(traj.Final().Y[1]).To(BeNumerically("~", eq[1], 1e-12))
	})
})
