package bmi_test

import (
	"math"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/bmisim/internal/bmi"
	"github.com/san-kum/bmisim/internal/config"
)

var _ = Describe("Model", func() {
	var m *bmi.Model

	BeforeEach(func() {
		var err error
		m, err = bmi.Initialize("")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = m.Finalize()
	})

	Describe("Initialize", func() {
		It("uses the default 20x10 grid", func() {
			shape, rank, err := m.GridShape(bmi.VarHeight)
			Expect(err).NotTo(HaveOccurred())
			Expect(rank).To(Equal(2))
			Expect(shape).To(Equal([]int{20, 10}))

			dt, err := m.TimeStep()
			Expect(err).NotTo(HaveOccurred())
			Expect(dt).To(Equal(1.0))
		})

		It("reads a single-line configuration file", func() {
			path := filepath.Join(GinkgoT().TempDir(), "model.cfg")
			Expect(os.WriteFile(path, []byte("0.5, 6, 4\n"), 0644)).To(Succeed())

			other, err := bmi.Initialize(path)
			Expect(err).NotTo(HaveOccurred())
			defer other.Finalize()

			shape, _, _ := other.GridShape(bmi.VarHeight)
			Expect(shape).To(Equal([]int{6, 4}))
			spacing, _, _ := other.GridSpacing(bmi.VarHeight)
			Expect(spacing).To(Equal([]float64{1, 1}))
		})

		It("fails with ErrConfig when the file cannot be opened", func() {
			other, err := bmi.Initialize(filepath.Join(GinkgoT().TempDir(), "missing.cfg"))
			Expect(err).To(MatchError(bmi.ErrConfig))
			Expect(other).To(BeNil())
		})

		It("reports malformed lines as parse errors", func() {
			path := filepath.Join(GinkgoT().TempDir(), "bad.cfg")
			Expect(os.WriteFile(path, []byte("fast, 6, 4\n"), 0644)).To(Succeed())

			_, err := bmi.Initialize(path)
			var pe *config.ParseError
			Expect(err).To(BeAssignableToTypeOf(pe))
			Expect(err).To(MatchError(bmi.ErrConfig))
		})

		It("reports impossible sizes as resource errors", func() {
			cfg := config.DefaultConfig()
			cfg.Rows, cfg.Cols = 1<<20, 1<<20
			_, err := bmi.InitializeConfig(cfg)
			Expect(err).To(MatchError(bmi.ErrResource))
		})

		It("is reproducible for a fixed seed", func() {
			other, err := bmi.Initialize("")
			Expect(err).NotTo(HaveOccurred())
			defer other.Finalize()

			a, _, _ := m.GetDouble(bmi.VarHeight)
			b, _, _ := other.GetDouble(bmi.VarHeight)
			Expect(a).To(Equal(b))
		})
	})

	Describe("Update", func() {
		It("advances one fixed step whatever time is requested", func() {
			for k, requested := range []float64{0, 1000, -5, math.Inf(1), 3.5} {
				Expect(m.Update(requested)).To(Succeed())
				now, err := m.CurrentTime()
				Expect(err).NotTo(HaveOccurred())
				Expect(now).To(Equal(float64(k + 1)))
			}
		})

		It("matches the default scenario after one step", func() {
			before, _, err := m.GetDoubleCopy(bmi.VarHeight)
			Expect(err).NotTo(HaveOccurred())
			at := func(z []float64, r, c int) float64 { return z[r*10+c] }

			Expect(m.Update(0)).To(Succeed())
			Expect(m.CurrentTime()).To(Equal(1.0))

			after, _, _ := m.GetDouble(bmi.VarHeight)
			Expect(at(after, 0, 0)).To(Equal(0.0))
			Expect(at(after, 0, 9)).To(Equal(0.0))
			Expect(at(after, 19, 0)).To(BeNumerically("~", 0.0, 1e-12))
			Expect(at(after, 19, 9)).To(BeNumerically("~", 0.0, 1e-12))

			want := 0.25 * (1*(at(before, 9, 5)+at(before, 11, 5)) + 1*(at(before, 10, 4)+at(before, 10, 6)))
			Expect(at(after, 10, 5)).To(BeNumerically("~", want, 1e-15))
		})

		It("keeps the boundary fixed across many steps", func() {
			initial, _, _ := m.GetDoubleCopy(bmi.VarHeight)
			for i := 0; i < 100; i++ {
				Expect(m.Update(0)).To(Succeed())
			}
			z, _, _ := m.GetDouble(bmi.VarHeight)
			for r := 0; r < 20; r++ {
				for c := 0; c < 10; c++ {
					if r == 0 || r == 19 || c == 0 || c == 9 {
						Expect(z[r*10+c]).To(Equal(initial[r*10+c]), "cell (%d,%d)", r, c)
					}
				}
			}
		})

		It("steps until the target time with UpdateUntil", func() {
			Expect(m.UpdateUntil(4.5)).To(Succeed())
			Expect(m.CurrentTime()).To(Equal(5.0))

			Expect(m.UpdateUntil(2)).To(Succeed())
			Expect(m.CurrentTime()).To(Equal(5.0))

			Expect(m.UpdateUntil(math.Inf(1))).To(MatchError(bmi.ErrTimeRange))
			Expect(m.UpdateUntil(math.NaN())).To(MatchError(bmi.ErrTimeRange))
		})

		It("rejects targets it cannot reach in bounded time", func() {
			Expect(m.UpdateUntil(m.EndTime())).To(MatchError(bmi.ErrTimeRange))
			Expect(m.UpdateUntil(1e18)).To(MatchError(bmi.ErrTimeRange))
			Expect(m.UpdateUntil(float64(bmi.MaxUntilSteps) + 2)).To(MatchError(bmi.ErrTimeRange))
			Expect(m.CurrentTime()).To(Equal(0.0))
		})

		It("reaches targets that are not a whole number of steps away", func() {
			cfg := config.DefaultConfig()
			cfg.TimeStep = 0.1
			fine, err := bmi.InitializeConfig(cfg)
			Expect(err).NotTo(HaveOccurred())
			defer fine.Finalize()

			Expect(fine.UpdateUntil(1.0)).To(Succeed())
			now, _ := fine.CurrentTime()
			Expect(now).To(BeNumerically(">=", 1.0))
			Expect(now).To(BeNumerically("<", 1.1+1e-9))
		})
	})

	Describe("time accessors", func() {
		It("reports a zero start and an unbounded end", func() {
			Expect(m.StartTime()).To(Equal(0.0))
			Expect(m.EndTime()).To(Equal(math.MaxFloat64))
			Expect(m.TimeUnits()).To(Equal("s"))
		})
	})

	Describe("variable table", func() {
		It("names the component and its variables", func() {
			Expect(m.ComponentName()).To(Equal("Example C model"))
			Expect(m.InputVarNames()).To(Equal([]string{"height_above_sea_floor"}))
			Expect(m.OutputVarNames()).To(Equal([]string{"grid_longitude", "height_above_sea_floor"}))
		})

		It("hands out fresh name slices", func() {
			names := m.OutputVarNames()
			names[0] = "mutated"
			Expect(m.OutputVarNames()[0]).To(Equal("grid_longitude"))
		})

		DescribeTable("metadata of known variables",
			func(name, units string) {
				typ, err := m.VarType(name)
				Expect(err).NotTo(HaveOccurred())
				Expect(typ).To(Equal("double"))

				u, err := m.VarUnits(name)
				Expect(err).NotTo(HaveOccurred())
				Expect(u).To(Equal(units))

				rank, err := m.VarRank(name)
				Expect(err).NotTo(HaveOccurred())
				Expect(rank).To(Equal(2))
			},
			Entry("longitude", bmi.VarGridLongitude, "arc_degree"),
			Entry("latitude", bmi.VarGridLatitude, "arc_degree"),
			Entry("height", bmi.VarHeight, "meter"),
		)

		DescribeTable("unknown names",
			func(name string) {
				_, err := m.VarType(name)
				Expect(err).To(MatchError(bmi.ErrUnknownVariable))
				_, err = m.VarUnits(name)
				Expect(err).To(MatchError(bmi.ErrUnknownVariable))
				rank, err := m.VarRank(name)
				Expect(err).To(MatchError(bmi.ErrUnknownVariable))
				Expect(rank).To(Equal(0))

				shape, rank, err := m.GridShape(name)
				Expect(err).To(MatchError(bmi.ErrUnknownVariable))
				Expect(shape).To(BeNil())
				Expect(rank).To(Equal(0))

				data, dims, err := m.GetDouble(name)
				Expect(err).To(MatchError(bmi.ErrUnknownVariable))
				Expect(data).To(BeNil())
				Expect(dims).To(BeNil())

				Expect(m.SetDouble(name, nil)).To(MatchError(bmi.ErrUnknownVariable))
			},
			Entry("empty", ""),
			Entry("case differs", "Height_Above_Sea_Floor"),
			Entry("other", "surface_temperature"),
		)
	})

	Describe("grid metadata", func() {
		It("describes the field grid", func() {
			Expect(m.GridType(bmi.VarHeight)).To(Equal(bmi.GridUniform))

			spacing, rank, err := m.GridSpacing(bmi.VarHeight)
			Expect(err).NotTo(HaveOccurred())
			Expect(rank).To(Equal(2))
			Expect(spacing).To(Equal([]float64{1, 1}))

			origin, rank, err := m.GridOrigin(bmi.VarHeight)
			Expect(err).NotTo(HaveOccurred())
			Expect(rank).To(Equal(2))
			Expect(origin).To(Equal([]float64{0, 0}))
		})

		It("returns rank 0 for known variables without a grid", func() {
			for _, name := range []string{bmi.VarGridLongitude, bmi.VarGridLatitude} {
				shape, rank, err := m.GridShape(name)
				Expect(err).NotTo(HaveOccurred())
				Expect(shape).To(BeNil())
				Expect(rank).To(Equal(0))

				spacing, rank, _ := m.GridSpacing(name)
				Expect(spacing).To(BeNil())
				Expect(rank).To(Equal(0))

				origin, rank, _ := m.GridOrigin(name)
				Expect(origin).To(BeNil())
				Expect(rank).To(Equal(0))

				Expect(m.GridType(name)).To(Equal(bmi.GridUnknown))
			}
		})

		It("keeps the shape fixed for the lifetime of the handle", func() {
			for i := 0; i < 5; i++ {
				Expect(m.Update(0)).To(Succeed())
				shape, _, _ := m.GridShape(bmi.VarHeight)
				Expect(shape).To(Equal([]int{20, 10}))
			}
		})

		It("uses configured spacing in the grid metadata", func() {
			cfg := config.DefaultConfig()
			cfg.RowSpacing, cfg.ColSpacing = 2, 0.5
			other, err := bmi.InitializeConfig(cfg)
			Expect(err).NotTo(HaveOccurred())
			defer other.Finalize()

			spacing, _, _ := other.GridSpacing(bmi.VarHeight)
			Expect(spacing).To(Equal([]float64{2, 0.5}))
		})
	})

	Describe("GetDouble and SetDouble", func() {
		It("round-trips the field", func() {
			buf := make([]float64, 200)
			for i := range buf {
				buf[i] = float64(i) / 3
			}
			Expect(m.SetDouble(bmi.VarHeight, buf)).To(Succeed())

			got, shape, err := m.GetDouble(bmi.VarHeight)
			Expect(err).NotTo(HaveOccurred())
			Expect(shape).To(Equal([]int{20, 10}))
			Expect(got).To(Equal(buf))
		})

		It("shares the live buffer with the caller", func() {
			z, _, _ := m.GetDouble(bmi.VarHeight)
			z[5*10+5] = 100

			again, _, _ := m.GetDouble(bmi.VarHeight)
			Expect(again[5*10+5]).To(Equal(100.0))

			Expect(m.Update(0)).To(Succeed())
			Expect(z[4*10+5]).To(BeNumerically(">", 25.0))
		})

		It("isolates GetDoubleCopy from later updates", func() {
			snap, _, _ := m.GetDoubleCopy(bmi.VarHeight)
			snap[5*10+5] = -1
			z, _, _ := m.GetDouble(bmi.VarHeight)
			Expect(z[5*10+5]).NotTo(Equal(-1.0))
		})

		It("rejects buffers of the wrong size", func() {
			Expect(m.SetDouble(bmi.VarHeight, make([]float64, 10))).To(MatchError(bmi.ErrSizeMismatch))
		})

		It("does not set output-only variables", func() {
			Expect(m.SetDouble(bmi.VarGridLongitude, make([]float64, 200))).To(MatchError(bmi.ErrNotSettable))

			data, dims, err := m.GetDouble(bmi.VarGridLongitude)
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(BeNil())
			Expect(dims).To(BeNil())
		})
	})

	Describe("Finalize", func() {
		It("invalidates the handle", func() {
			Expect(m.Finalize()).To(Succeed())

			Expect(m.Update(0)).To(MatchError(bmi.ErrInvalidHandle))
			Expect(m.UpdateUntil(3)).To(MatchError(bmi.ErrInvalidHandle))
			_, err := m.CurrentTime()
			Expect(err).To(MatchError(bmi.ErrInvalidHandle))
			_, _, err = m.GetDouble(bmi.VarHeight)
			Expect(err).To(MatchError(bmi.ErrInvalidHandle))
			_, _, err = m.GridShape(bmi.VarHeight)
			Expect(err).To(MatchError(bmi.ErrInvalidHandle))
			Expect(m.SetDouble(bmi.VarHeight, nil)).To(MatchError(bmi.ErrInvalidHandle))
			Expect(m.Finalize()).To(MatchError(bmi.ErrInvalidHandle))
		})

		It("still answers static metadata", func() {
			Expect(m.Finalize()).To(Succeed())
			Expect(m.ComponentName()).To(Equal("Example C model"))
			Expect(m.VarUnits(bmi.VarHeight)).To(Equal("meter"))
		})

		It("rejects a nil handle", func() {
			var nilModel *bmi.Model
			Expect(nilModel.Update(0)).To(MatchError(bmi.ErrInvalidHandle))
			Expect(nilModel.Finalize()).To(MatchError(bmi.ErrInvalidHandle))
		})
	})
})

var _ = Describe("Variables", func() {
	It("lists the table in declaration order", func() {
		vars := bmi.Variables()
		Expect(vars).To(HaveLen(3))
		Expect(vars[0].Name).To(Equal(bmi.VarGridLongitude))
		Expect(vars[2].HasGrid).To(BeTrue())

		_, ok := bmi.Lookup("nope")
		Expect(ok).To(BeFalse())
	})
})
