package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"autorisk/domain/enrichment"
	"autorisk/domain/premium"
	"autorisk/internal"
	"autorisk/internal/config"
	"autorisk/internal/container"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "autorisk-cli",
		Short: "Auto-insurance premium estimates and risk context from the command line",
	}

	rootCmd.AddCommand(
		newEstimateCmd(),
		newRiskCmd(),
		newEnrichCmd(),
		newTablesCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withContainer builds the container from the environment, runs fn and shuts down
func withContainer(ctx context.Context, fn func(*container.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Logging.Level))

	c, err := container.New(cfg, logger)
	if err != nil {
		return err
	}
	defer c.Shutdown(ctx)
	return fn(c)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newEstimateCmd() *cobra.Command {
	var q premium.Query
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "estimate [model]",
		Short: "Estimate the premium for a vehicle and driver profile",
		Long: `Estimate the premium for a model, attaching model/region context, the
half-year evolution and, when the region names a state, the risk profile.

Example: autorisk-cli estimate CIVIC --year 2020 --sex M --region "Met. de São Paulo" --age-band "26 a 35 anos"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q.Model = args[0]
			return withContainer(cmd.Context(), func(c *container.Container) error {
				res, err := c.Quotes.Quote(cmd.Context(), q)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(res)
				}
				if res.Error {
					return fmt.Errorf("%s", res.Message)
				}

				est := res.Estimate
				fmt.Printf("Model: %s (%d)\n", q.Model, q.Year)
				fmt.Printf("Estimated premium: R$ %.2f\n", est.Premium)
				fmt.Printf("Base premium: R$ %.2f (loss cost applied: %t)\n", est.BasePremium, est.LossCostApplied)
				for _, adj := range est.Adjustments {
					fmt.Printf("  x %.2f  %s (%s)\n", adj.Multiplier, adj.Factor, adj.Basis)
				}
				if len(est.Refinements) > 0 {
					fmt.Printf("Matched on: modelo, %s\n", strings.Join(est.Refinements, ", "))
				}
				if p := res.RiskProfile; p != nil {
					fmt.Printf("Risk: %d (%s) - %s\n", p.Score, p.Level, p.Recommendation)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&q.Year, "year", 0, "Vehicle manufacture year")
	cmd.Flags().StringVar(&q.Sex, "sex", "", "Driver sex (M/F)")
	cmd.Flags().StringVar(&q.Region, "region", "", "Region descriptor as in the policy data")
	cmd.Flags().StringVar(&q.AgeBand, "age-band", "", "Driver age band as in the policy data")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")
	_ = cmd.MarkFlagRequired("year")

	return cmd
}

func newRiskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "risk [model] [uf]",
		Short: "Build the integrated risk profile of a model in a state",
		Long: `Combine brand accidents, state theft and demographics into a risk score.

Example: autorisk-cli risk HONDA/CIVIC SP`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *container.Container) error {
				profile, err := c.Analyzer.IntegratedRiskProfile(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return printJSON(profile)
			})
		},
	}
}

func newEnrichCmd() *cobra.Command {
	var historyFile string

	cmd := &cobra.Command{
		Use:   "enrich [question]",
		Short: "Print the grounded prompt for a question",
		Long: `Classify a question, retrieve the data it needs and print the prompt that
would be handed to a text generator. History lines are read as "role: content".

Example: autorisk-cli enrich "qual o preço do civic em SP?" --history chat.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := readHistory(historyFile)
			if err != nil {
				return err
			}
			return withContainer(cmd.Context(), func(c *container.Container) error {
				prompt, err := c.Enricher.EnrichPrompt(cmd.Context(), strings.Join(args, " "), history)
				if err != nil {
					return err
				}
				fmt.Println(prompt.Text)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&historyFile, "history", "", "File with prior turns, one \"role: content\" per line")

	return cmd
}

func readHistory(path string) ([]enrichment.Turn, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	defer f.Close()

	var turns []enrichment.Turn
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		role, content, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		turns = append(turns, enrichment.Turn{Role: strings.TrimSpace(role), Content: strings.TrimSpace(content)})
	}
	return turns, scanner.Err()
}

func newTablesCmd() *cobra.Command {
	var preload bool

	cmd := &cobra.Command{
		Use:   "tables [name]",
		Short: "Summarise the registered tables, or describe one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *container.Container) error {
				ctx := cmd.Context()
				if len(args) == 1 {
					info, err := c.Registry.Info(ctx, args[0])
					if err != nil {
						return err
					}
					return printJSON(info)
				}
				if preload {
					if err := c.Preload(ctx); err != nil {
						return err
					}
				}
				fmt.Print(c.Registry.Summary(ctx))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&preload, "load", false, "Load every table before summarising")

	return cmd
}
