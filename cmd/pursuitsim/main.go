package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	logLevel   string

	preset   string
	episodes int
	seed     int64
	workers  int
	record   bool
	width    float64
	height   float64
	steps    int

	kp    float64
	ki    float64
	kd    float64
	steer float64
	accel float64

	outPath string
	xAxis   int
	yAxis   int

	sweepParam  string
	sweepMin    float64
	sweepMax    float64
	sweepPoints int
	trials      int
	benchSteps  int
	perturb     float64
	gridAxes    []string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "pursuitsim",
		Short:        "car and target pursuit environment",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".pursuitsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level")

	runCmd := &cobra.Command{
		Use:   "run [policy]",
		Short: "roll out a policy and save the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRollout,
	}
	worldFlags(runCmd)
	policyFlags(runCmd)
	runCmd.Flags().IntVar(&episodes, "episodes", 5, "episodes")
	runCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	runCmd.Flags().BoolVar(&record, "record", true, "record every step")
	runCmd.Flags().IntVar(&workers, "workers", 1, "independent streams run concurrently, stream i seeded seed+i")

	evalCmd := &cobra.Command{
		Use:   "eval [policy]",
		Short: "evaluate a policy on the fixed evaluation seed",
		Args:  cobra.MaximumNArgs(1),
		RunE:  evalPolicy,
	}
	worldFlags(evalCmd)
	policyFlags(evalCmd)
	evalCmd.Flags().IntVar(&episodes, "episodes", 10, "episodes")
	evalCmd.Flags().Int64Var(&seed, "seed", 12345, "evaluation seed")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot reward and distance of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "scatter two observation components",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", 0, "observation index for x-axis")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", 1, "observation index for y-axis")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of the distance to the target",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run steps to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure step throughput across vectorised env sizes",
		RunE:  benchEnvs,
	}
	worldFlags(benchCmd)
	benchCmd.Flags().IntVar(&benchSteps, "steps", 2000, "steps per env")
	benchCmd.Flags().Int64Var(&seed, "seed", 42, "random seed")

	sweepCmd := &cobra.Command{
		Use:   "sweep [policy]",
		Short: "evaluate a policy across values of one world parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	worldFlags(sweepCmd)
	policyFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "tgt_accel_std", "world parameter")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1000, "last value")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 6, "number of values")
	sweepCmd.Flags().IntVar(&episodes, "episodes", 3, "episodes per value")
	sweepCmd.Flags().Int64Var(&seed, "seed", 12345, "evaluation seed")
	sweepCmd.Flags().IntVar(&workers, "workers", 4, "values evaluated concurrently")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [policy]",
		Short: "capture statistics over many spawn seeds",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	worldFlags(monteCarloCmd)
	policyFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 100, "number of trials")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "seed of the first trial")
	monteCarloCmd.Flags().IntVar(&workers, "workers", 4, "trials run concurrently")

	divergeCmd := &cobra.Command{
		Use:   "diverge [policy]",
		Short: "estimate closed-loop sensitivity to the start state",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDivergence,
	}
	worldFlags(divergeCmd)
	policyFlags(divergeCmd)
	divergeCmd.Flags().Int64Var(&seed, "seed", 12345, "random seed")
	divergeCmd.Flags().Float64Var(&perturb, "eps", 1e-6, "initial perturbation of vehicle x")

	tuneCmd := &cobra.Command{
		Use:   "tune [policy]",
		Short: "grid search policy parameters for the best evaluation return",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tunePolicy,
	}
	worldFlags(tuneCmd)
	policyFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&gridAxes, "grid", []string{"kp=0.5:4:8", "kd=0:0.5:3"}, "grid axis name=min:max:n (repeatable)")
	tuneCmd.Flags().IntVar(&episodes, "episodes", 3, "evaluation episodes per point")
	tuneCmd.Flags().Int64Var(&seed, "seed", 12345, "evaluation seed")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list world presets",
		RunE:  listPresets,
	}

	policiesCmd := &cobra.Command{
		Use:   "policies",
		Short: "list policies",
		Run:   listPolicies,
	}

	rootCmd.AddCommand(runCmd, evalCmd, listCmd, plotCmd, phaseCmd, analyzeCmd, exportCmd, exportCSVCmd,
		benchCmd, sweepCmd, monteCarloCmd, divergeCmd, tuneCmd, scenarioCmd, presetsCmd, policiesCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func worldFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "world preset")
	cmd.Flags().Float64Var(&width, "width", 800, "world width")
	cmd.Flags().Float64Var(&height, "height", 600, "world height")
	cmd.Flags().IntVar(&steps, "episode-steps", 1000, "steps per episode")
}

func policyFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&kp, "kp", 2.0, "pid kp")
	cmd.Flags().Float64Var(&ki, "ki", 0.0, "pid ki")
	cmd.Flags().Float64Var(&kd, "kd", 0.1, "pid kd")
	cmd.Flags().Float64Var(&steer, "steer", 0, "constant policy steer")
	cmd.Flags().Float64Var(&accel, "accel", 0, "constant policy accel")
}
