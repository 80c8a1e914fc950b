package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/pursuitsim/internal/analysis"
	"github.com/san-kum/pursuitsim/internal/automation"
	"github.com/san-kum/pursuitsim/internal/config"
	"github.com/san-kum/pursuitsim/internal/experiment"
	"github.com/san-kum/pursuitsim/internal/metrics"
	"github.com/san-kum/pursuitsim/internal/optim"
	"github.com/san-kum/pursuitsim/internal/policy"
	"github.com/san-kum/pursuitsim/internal/pursuit"
	"github.com/san-kum/pursuitsim/internal/storage"
	"github.com/san-kum/pursuitsim/internal/vecenv"
	"github.com/san-kum/pursuitsim/internal/viz"
)

var obsNames = [pursuit.ObsSize]string{"x_rel", "y_rel", "vx_rel", "vy_rel", "v"}

func runRollout(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	if _, err := newPolicy(cfg); err != nil {
		return err
	}

	ctx, stop := interruptible()
	defer stop()

	log.WithField("policy", cfg.Policy).WithField("seed", cfg.Seed).WithField("workers", cfg.Workers).Info("running rollout")

	var eps []experiment.Episode
	if cfg.Workers > 1 {
		mk := func() policy.Policy {
			p, _ := newPolicy(cfg)
			return p
		}
		eps, err = experiment.NewEnsemble(cfg.World, mk, cfg.Workers, cfg.Seed, log).Run(ctx, cfg.Episodes, cfg.Record)
	} else {
		eps, err = rollout(ctx, cfg, log)
	}
	if err != nil {
		return err
	}

	mon := experiment.NewMonitor()
	for _, ep := range eps {
		mon.Record(ep)
	}
	summary := mon.Summary()
	means := experiment.MeanMetrics(eps)

	runID, err := st.Save(storage.Run{
		Policy:   cfg.Policy,
		Seed:     cfg.Seed,
		World:    cfg.World,
		Summary:  summary,
		Metrics:  means,
		Episodes: eps,
	})
	if err != nil {
		return err
	}

	fmt.Println(viz.Summary("run "+runID, summary, means, mon.Returns()))
	return nil
}

func rollout(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) ([]experiment.Episode, error) {
	env, err := pursuit.New(cfg.World)
	if err != nil {
		return nil, err
	}
	pol, err := newPolicy(cfg)
	if err != nil {
		return nil, err
	}

	runner := experiment.New(log)
	for _, m := range metrics.Default(cfg.World) {
		runner.AddMetric(m)
	}
	return runner.Run(ctx, env, pol, experiment.Config{
		Episodes: cfg.Episodes,
		Seed:     cfg.Seed,
		Record:   cfg.Record,
	})
}

func evalPolicy(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd, args)
	if err != nil {
		return err
	}
	pol, err := newPolicy(cfg)
	if err != nil {
		return err
	}

	ctx, stop := interruptible()
	defer stop()

	summary, eps, err := experiment.Evaluate(ctx, cfg.World, pol, cfg.Episodes, cfg.Seed, log)
	if err != nil {
		return err
	}

	returns := make([]float64, len(eps))
	for i, ep := range eps {
		returns[i] = ep.Return
	}
	fmt.Println(viz.Summary("eval "+cfg.Policy, summary, experiment.MeanMetrics(eps), returns))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPOLICY\tTIME\tSEED\tEPISODES\tSTEPS\tRETURN")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%.2f\n",
			run.ID,
			run.Policy,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Seed,
			run.Episodes,
			run.StepCount,
			run.Summary.MeanReturn,
		)
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []storage.StepRecord, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	recs, err := st.LoadSteps(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(recs) == 0 {
		return nil, nil, fmt.Errorf("run %s has no recorded steps", runID)
	}
	return meta, recs, nil
}

// byEpisode splits per-step distance by episode, in file order.
func byEpisode(recs []storage.StepRecord) [][]float64 {
	var out [][]float64
	last := -1
	for _, r := range recs {
		if r.Episode != last {
			out = append(out, nil)
			last = r.Episode
		}
		out[len(out)-1] = append(out[len(out)-1], r.Dist)
	}
	return out
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, recs, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("policy: %s\n", meta.Policy)
	fmt.Printf("samples: %d\n\n", len(recs))

	rewards := make([]float64, len(recs))
	for i, r := range recs {
		rewards[i] = float64(r.Reward)
	}
	fmt.Println(viz.Plot(rewards, "reward per step", 10, 80))
	fmt.Println()

	dists := byEpisode(recs)
	if len(dists) > 5 {
		dists = dists[:5]
	}
	fmt.Println(viz.PlotMany(dists, "distance to target (first episodes)", 12, 80))
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, recs, err := loadRun(args[0])
	if err != nil {
		return err
	}

	obs := make([]pursuit.Observation, len(recs))
	for i, r := range recs {
		obs[i] = r.Observation
	}
	p := analysis.NewPortrait(obs, xAxis, yAxis)
	if p == nil {
		return fmt.Errorf("axes must be in [0, %d)", pursuit.ObsSize)
	}

	minX, maxX, minY, maxY := p.Bounds()
	fmt.Printf("phase plot: %s\n", meta.ID)
	fmt.Printf("x-axis: %s [%.2f, %.2f]\n", obsNames[xAxis], minX, maxX)
	fmt.Printf("y-axis: %s [%.2f, %.2f]\n\n", obsNames[yAxis], minY, maxY)
	fmt.Print(p.ASCII(70, 20))
	fmt.Printf("\nLegend: . = early, o = middle, • = late\n")
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, recs, err := loadRun(args[0])
	if err != nil {
		return err
	}

	dist := byEpisode(recs)[0]
	ps := analysis.PowerSpectrum(dist)
	if len(ps) < 4 {
		return fmt.Errorf("episode too short for analysis")
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("policy: %s\n\n", meta.Policy)
	fmt.Println(viz.Plot(ps[1:len(ps)/4], "power spectrum (distance, episode 0)", 15, 80))
	fmt.Println()

	period, power := analysis.DominantPeriod(dist, meta.World.Dt)
	if period == 0 {
		fmt.Println("no oscillation found")
		return nil
	}
	fmt.Printf("dominant period: %.3fs (%.3f Hz, power %.2f)\n", period, 1/period, power)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if outPath != "" {
		if err := st.ExportJSON(args[0], outPath); err != nil {
			return err
		}
		fmt.Printf("exported to %s\n", outPath)
		return nil
	}
	return st.WriteJSON(args[0], os.Stdout)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, recs, err := loadRun(args[0])
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := []string{"episode", "tick"}
	header = append(header, obsNames[:]...)
	header = append(header, "steer", "accel", "reward", "dist")
	if err := w.Write(header); err != nil {
		return err
	}

	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	for _, r := range recs {
		row := []string{strconv.Itoa(r.Episode), strconv.Itoa(r.Tick)}
		for _, v := range r.Observation {
			row = append(row, f(float64(v)))
		}
		row = append(row, f(float64(r.Action[0])), f(float64(r.Action[1])), f(float64(r.Reward)), f(r.Dist))
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func benchEnvs(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup(cmd, args)
	if err != nil {
		return err
	}
	ctx, stop := interruptible()
	defer stop()

	fmt.Printf("benchmarking %.0fx%.0f world, %d steps per env\n\n", cfg.World.Width, cfg.World.Height, benchSteps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ENVS\tSTEPS\tTIME\tSTEPS/SEC")

	for _, n := range []int{1, 2, 4, 8, 16} {
		venv, err := vecenv.New(cfg.World, n, cfg.Seed)
		if err != nil {
			return err
		}
		pols := make([]policy.Policy, n)
		for i := range pols {
			pols[i] = policy.NewRandom(cfg.Seed + int64(i))
		}

		obs, err := venv.Reset(ctx)
		if err != nil {
			return err
		}
		actions := make([]pursuit.Action, n)

		start := time.Now()
		for s := 0; s < benchSteps; s++ {
			for i, p := range pols {
				actions[i] = p.Act(obs[i])
			}
			res, err := venv.Step(ctx, actions)
			if err != nil {
				return err
			}
			obs = res.Observations
		}
		elapsed := time.Since(start)

		total := n * benchSteps
		fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\n", n, total, elapsed, float64(total)/elapsed.Seconds())
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd, args)
	if err != nil {
		return err
	}
	ctx, stop := interruptible()
	defer stop()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		World:        cfg.World,
		Policy:       cfg.Policy,
		PolicyParams: cfg.PolicyParams,
		Param:        sweepParam,
		Min:          sweepMin,
		Max:          sweepMax,
		Points:       sweepPoints,
		Episodes:     cfg.Episodes,
		Seed:         cfg.Seed,
		Workers:      cfg.Workers,
	}, policy.NewRegistry(), log)
	if err != nil {
		return err
	}

	rows := make([][]string, len(results))
	returns := make([]float64, len(results))
	for i, r := range results {
		rows[i] = []string{
			fmt.Sprintf("%.4f", r.Value),
			fmt.Sprintf("%.2f ± %.2f", r.MeanReturn, r.StdReturn),
			fmt.Sprintf("%.2f", r.MeanDistance),
			fmt.Sprintf("%.3f", r.CaptureRate),
		}
		returns[i] = r.MeanReturn
	}
	fmt.Println(viz.Table([]string{sweepParam, "RETURN", "DISTANCE", "CAPTURE"}, rows))
	fmt.Println()
	fmt.Println(viz.Plot(returns, "mean return vs "+sweepParam, 10, 60))
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd, args)
	if err != nil {
		return err
	}
	ctx, stop := interruptible()
	defer stop()

	start := time.Now()
	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		World:        cfg.World,
		Policy:       cfg.Policy,
		PolicyParams: cfg.PolicyParams,
		Trials:       trials,
		Seed:         cfg.Seed,
		Workers:      cfg.Workers,
	}, policy.NewRegistry())
	if err != nil {
		return err
	}
	log.WithField("elapsed", time.Since(start)).Debug("monte carlo done")

	captured, missed := automation.MonteCarloStats(results)
	closest := make([]float64, len(results))
	for i, r := range results {
		closest[i] = r.MinDistance
	}

	fmt.Printf("policy: %s\n", cfg.Policy)
	fmt.Printf("captured: %d/%d (%.1f%%)\n", captured, captured+missed, 100*float64(captured)/float64(len(results)))
	fmt.Println()
	fmt.Println(viz.Plot(closest, "closest approach per trial", 10, 80))
	return nil
}

func runDivergence(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup(cmd, args)
	if err != nil {
		return err
	}
	reg := policy.NewRegistry()
	if _, err := reg.Get(cfg.Policy, cfg.World, cfg.PolicyParams); err != nil {
		return err
	}

	env, err := pursuit.New(cfg.World, pursuit.WithSeed(cfg.Seed))
	if err != nil {
		return err
	}
	env.Reset()
	s0 := env.State()

	mk := func() policy.Policy {
		p, _ := reg.Get(cfg.Policy, cfg.World, cfg.PolicyParams)
		return p
	}
	rate := analysis.Divergence(cfg.World, s0, mk, cfg.Seed, perturb, cfg.World.EpisodeSteps)

	fmt.Printf("policy: %s\n", cfg.Policy)
	fmt.Printf("divergence rate: %.4f 1/s\n", rate)
	if rate > 0 {
		fmt.Println("nearby starts drift apart")
	} else {
		fmt.Println("nearby starts converge")
	}
	return nil
}

func tunePolicy(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && configFile == "" {
		args = []string{"pid"}
	}
	cfg, log, err := setup(cmd, args)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(gridAxes))
	ranges := make([][]float64, 0, len(gridAxes))
	for _, axis := range gridAxes {
		name, vals, err := optim.ParseAxis(axis)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}

	reg := policy.NewRegistry()
	if err := reg.CheckParams(cfg.Policy, cfg.World, names); err != nil {
		return err
	}

	ctx, stop := interruptible()
	defer stop()

	g := optim.NewGridSearch(names, ranges)
	log.WithField("policy", cfg.Policy).WithField("points", g.Size()).Info("grid search")

	obj := optim.PolicyObjective(cfg.World, reg, cfg.Policy, cfg.PolicyParams, cfg.Episodes, cfg.Seed)
	best, cost, err := g.Search(ctx, obj)
	if err != nil {
		return err
	}

	fmt.Printf("policy: %s\n", cfg.Policy)
	fmt.Printf("best mean return: %.3f\n", -cost)
	for _, name := range names {
		fmt.Printf("  %s: %.4f\n", name, best[name])
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	if configFile != "" {
		if cfg, err = config.Load(configFile); err != nil {
			return err
		}
	}
	if cmd.Flag("log-level").Changed || configFile == "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := interruptible()
	defer stop()

	results, err := automation.RunScenario(ctx, sc, policy.NewRegistry(), st, cfg.Logger())
	if err != nil {
		return err
	}

	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = []string{
			strconv.Itoa(r.Index + 1),
			r.Policy,
			fmt.Sprintf("%.0fx%.0f", r.World.Width, r.World.Height),
			fmt.Sprintf("%.2f", r.Summary.MeanReturn),
			fmt.Sprintf("%.2f", r.Summary.MeanDistance),
			r.RunID,
		}
	}
	if sc.Name != "" {
		fmt.Println(viz.Title.Render(sc.Name))
	}
	fmt.Println(viz.Table([]string{"STEP", "POLICY", "WORLD", "RETURN", "DISTANCE", "RUN"}, rows))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tWORLD\tTGT_MAX_SPEED\tTGT_ACCEL_STD\tSPAWN_SPEED")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%.0fx%.0f\t%.0f\t%.0f\t%.0f-%.0f\n",
			name, p.Width, p.Height, p.TargetMaxSpeed, p.TargetAccelStd, p.SpawnMinSpeed, p.SpawnMaxSpeed)
	}
	return w.Flush()
}

func listPolicies(cmd *cobra.Command, args []string) {
	for _, name := range policy.NewRegistry().List() {
		fmt.Println(name)
	}
}
