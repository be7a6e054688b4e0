// medex is the single-machine CLI: SQLite storage, local extraction
// binaries, and the same validation engine as the daemon.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rajiviyer/medical-doc-extractor/internal/common"
	"github.com/rajiviyer/medical-doc-extractor/internal/export"
	"github.com/rajiviyer/medical-doc-extractor/internal/extract"
	"github.com/rajiviyer/medical-doc-extractor/internal/ingest"
	"github.com/rajiviyer/medical-doc-extractor/internal/llm/openai"
	"github.com/rajiviyer/medical-doc-extractor/internal/pipeline"
	"github.com/rajiviyer/medical-doc-extractor/internal/repository"
	"github.com/rajiviyer/medical-doc-extractor/internal/rules"
)

var (
	flagSQLitePath string
	flagVerbose    bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:           "medex",
		Short:         "Validate medical insurance claims against policy documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if flagVerbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().StringVar(&flagSQLitePath, "db", "medex.db", "SQLite database path")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newValidateCmd(), newIngestCmd(), newProcessCmd(), newExportCmd())

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context) (*repository.SQLiteStore, error) {
	return repository.OpenSQLite(ctx, flagSQLitePath, slog.Default())
}

func newEngine() (*rules.Engine, error) {
	return rules.NewEngine(rules.DefaultConfig())
}

func newProcessor(store *repository.SQLiteStore) (*pipeline.Processor, error) {
	engine, err := newEngine()
	if err != nil {
		return nil, err
	}
	cfg := common.LoadConfig()
	extractor := extract.NewExtractor(extract.Config{
		Pdftotext:     cfg.Extract.Pdftotext,
		Pdftoppm:      cfg.Extract.Pdftoppm,
		Tesseract:     cfg.Extract.Tesseract,
		TesseractLang: cfg.Extract.TesseractLang,
		TessdataDir:   cfg.Extract.TessdataDir,
		DPI:           cfg.Extract.DPI,
		MaxPages:      cfg.Extract.MaxPages,
	}, slog.Default())
	llmClient := openai.NewClient(openai.Config{
		APIKey:          cfg.LLM.APIKey,
		BaseURL:         cfg.LLM.BaseURL,
		Model:           cfg.LLM.Model,
		Temperature:     cfg.LLM.Temperature,
		Timeout:         cfg.LLM.Timeout,
		LenientSanitize: true,
	}, slog.Default())
	return pipeline.NewProcessor(slog.Default(), store.Documents(), store.Runs(),
		extractor, llmClient, engine, cfg.LLM.Model), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%q is not a valid id", s)
	}
	return id, nil
}

func loadJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newValidateCmd() *cobra.Command {
	var policyPath, claimPath string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a claim against already-extracted policy fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			var policy rules.PolicyData
			if err := loadJSONFile(policyPath, &policy); err != nil {
				return err
			}
			var claim rules.ClaimData
			if err := loadJSONFile(claimPath, &claim); err != nil {
				return err
			}

			engine, err := newEngine()
			if err != nil {
				return err
			}
			results := engine.Evaluate(policy, claim)
			report := rules.Aggregate(policy, results)
			return printJSON(report)
		},
	}
	cmd.Flags().StringVar(&policyPath, "policy", "", "path to policy fields JSON")
	cmd.Flags().StringVar(&claimPath, "claim", "", "path to claim JSON")
	_ = cmd.MarkFlagRequired("policy")
	_ = cmd.MarkFlagRequired("claim")
	return cmd
}

func newIngestCmd() *cobra.Command {
	var dir bool
	cmd := &cobra.Command{
		Use:   "ingest <path>",
		Short: "Ingest a policy document or a directory of documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			ing := ingest.NewFSIngestor(store.Documents(), slog.Default())
			if dir {
				results, stats, err := ing.IngestDirectory(cmd.Context(), args[0], true)
				if err != nil {
					return err
				}
				return printJSON(map[string]any{"results": results, "stats": stats})
			}
			res, err := ing.IngestPath(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
	cmd.Flags().BoolVarP(&dir, "dir", "d", false, "treat path as a directory")
	return cmd
}

func newProcessCmd() *cobra.Command {
	var claimPath string
	cmd := &cobra.Command{
		Use:   "process <document-id>",
		Short: "Run the full pipeline over an ingested document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docID, err := parseUUID(args[0])
			if err != nil {
				return err
			}
			var claim rules.ClaimData
			if err := loadJSONFile(claimPath, &claim); err != nil {
				return err
			}

			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			proc, err := newProcessor(store)
			if err != nil {
				return err
			}
			out, err := proc.ProcessDocument(cmd.Context(), docID, claim)
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	cmd.Flags().StringVar(&claimPath, "claim", "", "path to claim JSON")
	_ = cmd.MarkFlagRequired("claim")
	return cmd
}

func newExportCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export <run-id>",
		Short: "Export a validation run's report as XLSX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := parseUUID(args[0])
			if err != nil {
				return err
			}

			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.Runs().GetByID(cmd.Context(), runID)
			if err != nil {
				return err
			}
			if len(run.ReportJSON) == 0 {
				return fmt.Errorf("run %s has no validation report", runID)
			}
			var report rules.ValidationReport
			if err := json.Unmarshal(run.ReportJSON, &report); err != nil {
				return fmt.Errorf("decode stored report: %w", err)
			}

			docName := run.DocumentID.String()
			if doc, err := store.Documents().GetByID(cmd.Context(), run.DocumentID); err == nil {
				docName = doc.Filename
			}

			xlsx, err := export.NewService(slog.Default()).ExportReportsXLSX([]export.ReportRow{{
				DocumentName: docName,
				RunID:        run.ID.String(),
				Report:       report,
			}})
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, xlsx, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "wrote", outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "validation.xlsx", "output XLSX path")
	return cmd
}
