package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"rarefy/adapters/rng"
	"rarefy/adapters/stats/engine"
	"rarefy/adapters/tabular"
	"rarefy/app"
	"rarefy/domain/rarefaction"
	"rarefy/internal/config"
)

func main() {
	// Optional .env for local defaults; absence is fine
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "rarefy",
		Short: "Rarefaction of microbiome count tables",
		Long: `Subsample a sample-by-taxon count table to a common depth, repeat,
and average a diversity metric (observed richness or Bray-Curtis
dissimilarity) across the draws.`,
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newInspectCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var (
		input      string
		output     string
		depth      int64
		iterations int
		seed       int64
		metric     string
		mode       string
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run rarefaction on a feature table",
		Long: `Run rarefaction on a delimited feature table (TSV/CSV/xlsx, taxa as
rows, samples as columns).

Example: rarefy run --input table.tsv --iterations 100 --seed 42 --metric richness --output rarefied.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if iterations == 0 {
				iterations = cfg.Engine.DefaultIterations
			}
			if !cmd.Flags().Changed("seed") {
				seed = cfg.Engine.DefaultSeed
			}
			if workers == 0 {
				workers = cfg.Engine.EffectiveWorkers()
			}

			table, err := tabular.NewTableReader(input).Read()
			if err != nil {
				return err
			}

			service := app.NewRarefactionService(engine.New(rng.New(), workers), nil, nil)
			outcome, err := service.Execute(cmd.Context(), app.RunRequest{
				Table: table,
				Config: rarefaction.Config{
					TargetDepth: depth,
					Iterations:  iterations,
					Seed:        seed,
					Metric:      rarefaction.Metric(metric),
					Mode:        rarefaction.Mode(mode),
				},
			})
			if err != nil {
				return err
			}

			if output != "" {
				if err := tabular.NewResultWriter(output).Write(outcome.Result); err != nil {
					return err
				}
				fmt.Printf("result written to %s\n", output)
			}

			encoded, err := json.MarshalIndent(outcome, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(encoded))
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Feature table file (TSV/CSV/xlsx)")
	cmd.Flags().StringVar(&output, "output", "", "Optional result export file (CSV or xlsx)")
	cmd.Flags().Int64Var(&depth, "depth", 0, "Target depth (0 = minimum library size)")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "Subsampling draws (0 = configured default)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Base seed for deterministic draws")
	cmd.Flags().StringVar(&metric, "metric", string(rarefaction.MetricRichness), "Metric: richness or braycurtis")
	cmd.Flags().StringVar(&mode, "mode", "", "Subsampling mode: exact (default) or scaled")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent iterations (0 = configured default)")
	cmd.MarkFlagRequired("input")

	return cmd
}

func newInspectCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show library sizes of a feature table",
		Long: `Show each sample's library size and the minimum across samples, the
default rarefaction depth.

Example: rarefy inspect --input table.tsv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := tabular.NewTableReader(input).Read()
			if err != nil {
				return err
			}

			sizes := table.LibrarySizes()
			samples := table.Samples()
			sort.Slice(samples, func(i, j int) bool { return sizes[samples[i]] < sizes[samples[j]] })

			fmt.Printf("%d taxa, %d samples\n\n", table.NumTaxa(), table.NumSamples())
			for _, sample := range samples {
				fmt.Printf("%-24s %d\n", sample, sizes[sample])
			}
			fmt.Printf("\nminimum library size (default depth): %d\n", table.MinLibrarySize())
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Feature table file (TSV/CSV/xlsx)")
	cmd.MarkFlagRequired("input")

	return cmd
}
