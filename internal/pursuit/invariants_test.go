package pursuit_test

import (
	"math"
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pursuitsim/internal/pursuit"
)

const eps = 1e-9

var _ = Describe("Env", func() {
	var (
		world pursuit.WorldConfig
		env   *pursuit.Env
		rng   *rand.Rand
	)

	randomAction := func() pursuit.Action {
		// Deliberately exceeds [-1, 1] so clamping is exercised too.
		return pursuit.Action{float32(rng.Float64()*4 - 2), float32(rng.Float64()*4 - 2)}
	}

	BeforeEach(func() {
		world = pursuit.DefaultWorld(800, 600)
		var err error
		env, err = pursuit.New(world, pursuit.WithSeed(2024))
		Expect(err).NotTo(HaveOccurred())
		rng = rand.New(rand.NewPCG(1, 2))
	})

	Context("over many episodes with random actions", func() {
		It("keeps every state invariant after every step", func() {
			for episode := 0; episode < 5; episode++ {
				env.Reset()
				prevTick := env.State().Tick
				Expect(prevTick).To(BeZero())

				for done := false; !done; {
					tr, err := env.Step(randomAction())
					Expect(err).NotTo(HaveOccurred())
					done = tr.Terminated

					s := env.State()
					Expect(s.IsValid()).To(BeTrue())
					Expect(s.Tick).To(Equal(prevTick + 1))
					prevTick = s.Tick

					Expect(s.Vehicle.Yaw).To(BeNumerically(">", -math.Pi))
					Expect(s.Vehicle.Yaw).To(BeNumerically("<=", math.Pi))

					Expect(s.Target.Speed()).To(BeNumerically("<=", world.TargetMaxSpeed+eps))

					Expect(s.Vehicle.X).To(BeNumerically(">=", 0))
					Expect(s.Vehicle.X).To(BeNumerically("<=", world.Width))
					Expect(s.Vehicle.Y).To(BeNumerically(">=", 0))
					Expect(s.Vehicle.Y).To(BeNumerically("<=", world.Height))
					Expect(s.Target.X).To(BeNumerically(">=", 0))
					Expect(s.Target.X).To(BeNumerically("<=", world.Width))
					Expect(s.Target.Y).To(BeNumerically(">=", 0))
					Expect(s.Target.Y).To(BeNumerically("<=", world.Height))

					Expect(tr.Truncated).To(BeFalse())
					Expect(tr.Info).To(HaveKey("dist"))
				}
				Expect(prevTick).To(Equal(world.EpisodeSteps))
			}
		})
	})

	Context("in a small, fast world", func() {
		BeforeEach(func() {
			world = pursuit.DefaultWorld(40, 30)
			world.TargetAccelStd = 5000
			var err error
			env, err = pursuit.New(world, pursuit.WithSeed(7))
			Expect(err).NotTo(HaveOccurred())
		})

		It("still contains both bodies", func() {
			env.Reset()
			for i := 0; i < world.EpisodeSteps; i++ {
				_, err := env.Step(pursuit.Action{1, 1})
				Expect(err).NotTo(HaveOccurred())
				s := env.State()
				Expect(s.Vehicle.X).To(And(BeNumerically(">=", 0), BeNumerically("<=", world.Width)))
				Expect(s.Vehicle.Y).To(And(BeNumerically(">=", 0), BeNumerically("<=", world.Height)))
				Expect(s.Target.X).To(And(BeNumerically(">=", 0), BeNumerically("<=", world.Width)))
				Expect(s.Target.Y).To(And(BeNumerically(">=", 0), BeNumerically("<=", world.Height)))
			}
		})
	})

	It("reproduces a trajectory from a seed", func() {
		other, err := pursuit.New(world)
		Expect(err).NotTo(HaveOccurred())

		obsA, _ := env.ResetWithSeed(5)
		obsB, _ := other.ResetWithSeed(5)
		Expect(obsA).To(Equal(obsB))
		for i := 0; i < 300; i++ {
			a := randomAction()
			ta, _ := env.Step(a)
			tb, _ := other.Step(a)
			Expect(ta).To(Equal(tb))
		}
	})
})

var _ = Describe("Advance", func() {
	It("does not mutate its input state", func() {
		w := pursuit.DefaultWorld(800, 600)
		s := pursuit.State{
			Vehicle: pursuit.Vehicle{X: 10, Y: 10, Yaw: 0.3, V: 50},
			Target:  pursuit.Target{X: 400, Y: 300, VX: 20, VY: -10},
		}
		before := s

		next, obs, _, dist := pursuit.Advance(w, s, pursuit.Action{0.5, 0.5}, pursuit.NewSource(1))
		Expect(s).To(Equal(before))
		Expect(next.Tick).To(Equal(1))
		Expect(obs).To(Equal(pursuit.ObservationOf(next)))
		Expect(dist).To(BeNumerically("~", math.Hypot(float64(obs[0]), float64(obs[1])), 1e-9))
	})
})

var _ = DescribeTable("Reflect",
	func(pos, vel, wantPos, wantVel float64) {
		p, v := pursuit.Reflect(pos, vel, 0, 100)
		Expect(p).To(Equal(wantPos))
		Expect(v).To(Equal(wantVel))
	},
	Entry("below zero moving out", -5.0, -10.0, 5.0, 10.0),
	Entry("above bound moving out", 103.0, 10.0, 97.0, -10.0),
	Entry("inside", 42.0, -3.0, 42.0, -3.0),
)
