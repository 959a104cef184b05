package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"solana-holder-lab/internal/app"
	"solana-holder-lab/internal/catalog"
	"solana-holder-lab/internal/config"
	"solana-holder-lab/internal/domain"
	"solana-holder-lab/internal/logger"
	"solana-holder-lab/internal/report"
	"solana-holder-lab/internal/reporting"
)

type rootOptions struct {
	envFile  string
	catalog  string
	logLevel string
	verbose  bool
}

func newRootCmd(ctx context.Context) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "holders",
		Short:        "Solana token holder distribution reports",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the environment")
	root.PersistentFlags().StringVar(&opts.catalog, "catalog", "", "YAML known-address catalog override")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (default from LOG_LEVEL)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "human-readable logs on stderr")

	root.AddCommand(reportCmd(ctx, opts))
	root.AddCommand(catalogCmd(opts))
	return root
}

func (o *rootOptions) load(stderr io.Writer) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if o.catalog != "" {
		cfg.CatalogFile = o.catalog
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	} else if !o.verbose {
		cfg.LogLevel = "error"
	}
	log := logger.NewWithConfig(logger.Config{
		Level:   cfg.LogLevel,
		Pretty:  o.verbose || cfg.LogPretty,
		Service: "holders",
		Version: app.Version,
		Out:     stderr,
	})
	return cfg, log, nil
}

func reportCmd(ctx context.Context, root *rootOptions) *cobra.Command {
	var (
		price  float64
		pretty bool
		format string
		top    int
		usage  bool
	)
	cmd := &cobra.Command{
		Use:   "report <mint>",
		Short: "Build the holder report for a mint and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := root.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			// A one-shot run never writes usage events to the databases.
			cfg.PostgresDSN, cfg.ClickhouseDSN = "", ""

			a, err := app.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			req := report.Request{TokenMint: args[0]}
			if cmd.Flags().Changed("price") {
				req.ManualPrice = &price
			}
			rep, err := a.Assembler.Build(ctx, req)
			if err != nil {
				return err
			}

			if err := writeReport(cmd.OutOrStdout(), rep, format, pretty, top); err != nil {
				return err
			}

			if usage {
				events, err := a.Usage.GetByReportID(ctx, rep.ReportID)
				if err != nil {
					return err
				}
				type row struct{ calls, credits, cached int }
				rows := make(map[string]*row)
				for _, e := range events {
					key := e.Service + "/" + e.Endpoint
					if rows[key] == nil {
						rows[key] = &row{}
					}
					rows[key].calls++
					rows[key].credits += e.Credits
					if e.Cached {
						rows[key].cached++
					}
				}
				keys := make([]string, 0, len(rows))
				for k := range rows {
					keys = append(keys, k)
				}
				sort.Strings(keys)

				tw := tabwriter.NewWriter(cmd.ErrOrStderr(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "CALL\tCOUNT\tCACHED\tCREDITS")
				for _, k := range keys {
					r := rows[k]
					fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", k, r.calls, r.cached, r.credits)
				}
				return tw.Flush()
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&price, "price", 0, "manual USD price, skips price discovery")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, markdown or csv")
	cmd.Flags().IntVar(&top, "top", reporting.DefaultTopHolders, "holders listed in markdown output")
	cmd.Flags().BoolVar(&usage, "usage", false, "print upstream calls and credits to stderr")
	return cmd
}

func writeReport(w io.Writer, rep *domain.Report, format string, pretty bool, top int) error {
	switch format {
	case "json", "":
		enc := json.NewEncoder(w)
		if pretty {
			enc.SetIndent("", "  ")
		}
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		return nil
	case "markdown", "md":
		_, err := io.WriteString(w, reporting.RenderMarkdown(rep, top))
		return err
	case "csv":
		out, err := reporting.RenderHoldersCSV(rep.Holders)
		if err != nil {
			return fmt.Errorf("render csv: %w", err)
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func catalogCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the known-address catalog in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := catalog.Default()
			if root.catalog != "" {
				var err error
				if cat, err = catalog.Load(root.catalog); err != nil {
					return err
				}
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "version\t%s\n", cat.Version())
			for _, id := range cat.Programs() {
				label, _ := cat.ProgramLabel(id)
				fmt.Fprintf(tw, "program\t%s\t%s\n", id, label)
			}
			for _, addr := range cat.LPWallets() {
				label, _ := cat.LPWalletLabel(addr)
				fmt.Fprintf(tw, "lp-wallet\t%s\t%s\n", addr, label)
			}
			for _, addr := range cat.BurnAddresses() {
				fmt.Fprintf(tw, "burn\t%s\n", addr)
			}
			return tw.Flush()
		},
	}
}
