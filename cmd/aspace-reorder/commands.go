package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/archival-ops/aspace-reorder/internal/aspace"
	"github.com/archival-ops/aspace-reorder/internal/config"
	"github.com/archival-ops/aspace-reorder/internal/domain"
	"github.com/archival-ops/aspace-reorder/internal/logging"
	"github.com/archival-ops/aspace-reorder/internal/mover"
	"github.com/archival-ops/aspace-reorder/internal/runlog"
	"github.com/archival-ops/aspace-reorder/internal/spreadsheet"
	"github.com/archival-ops/aspace-reorder/internal/ui"
	"github.com/archival-ops/aspace-reorder/internal/validate"
)

// version is set at build time via -ldflags
var version = "dev"

var (
	flagParentType string
	flagParentID   int
	flagMode       string
	flagYes        bool
	flagSampleSize int
	flagBatchSize  int
	historyLimit   int
)

func init() {
	previewCmd := &cobra.Command{
		Use:   "preview [FILE]",
		Short: "Show spreadsheet structure and what cleaning would do",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPreview,
	}
	rootCmd.AddCommand(previewCmd)

	validateCmd := &cobra.Command{
		Use:   "validate [FILE]",
		Short: "Validate parent and sampled children without moving anything",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runValidate,
	}
	addParentFlags(validateCmd)
	validateCmd.Flags().IntVar(&flagSampleSize, "sample-size", 0, "children to sample during validation")
	rootCmd.AddCommand(validateCmd)

	runCmd := &cobra.Command{
		Use:   "run [FILE]",
		Short: "Validate, confirm, and execute the reorder",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runReorder,
	}
	addParentFlags(runCmd)
	runCmd.Flags().StringVar(&flagMode, "mode", "", "execution mode: individual or bulk")
	runCmd.Flags().BoolVar(&flagYes, "yes", false, "skip confirmation prompts")
	runCmd.Flags().IntVar(&flagSampleSize, "sample-size", 0, "children to sample during validation")
	runCmd.Flags().IntVar(&flagBatchSize, "batch-size", 0, "bulk mode batch size")
	rootCmd.AddCommand(runCmd)

	historyCmd := &cobra.Command{
		Use:   "history [RUN_ID]",
		Short: "List past runs, or show one run's per-object outcomes",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHistory,
	}
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of runs to list")
	rootCmd.AddCommand(historyCmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
	rootCmd.AddCommand(versionCmd)
}

func addParentFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagParentType, "parent-type", "", "parent record type: archival_objects or resources")
	cmd.Flags().IntVar(&flagParentID, "parent-id", 0, "parent record id")
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	return config.Load(path)
}

func setup() (*config.Config, *slog.Logger, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, closeLog, err := logging.New(logging.Options{
		FilePath: cfg.Log.File,
		Level:    cfg.Log.Level,
		Verbose:  cfg.Log.Verbose,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, func() { _ = closeLog() }, nil
}

func inputFile(cfg *config.Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Input.File
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, logger, done, err := setup()
	if err != nil {
		return err
	}
	defer done()

	path := inputFile(cfg, args)
	preview, err := spreadsheet.BuildPreview(path, spreadsheet.Options{
		ExtraAliases: cfg.Input.IDColumnAliases,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	fmt.Println(ui.Title("Spreadsheet Preview"))
	fmt.Println(ui.RenderPreview(path, preview))
	if preview.Err != nil {
		return fmt.Errorf("the file cannot be processed as-is: %w", preview.Err)
	}
	return nil
}

// resolveParent takes the parent from flags or prompts for it
func resolveParent(prompter *ui.Prompter) (domain.Parent, error) {
	if flagParentType != "" || flagParentID != 0 {
		t, err := domain.ParseRecordType(flagParentType)
		if err != nil {
			return domain.Parent{}, err
		}
		if flagParentID <= 0 {
			return domain.Parent{}, fmt.Errorf("--parent-id must be a positive integer")
		}
		return domain.Parent{Type: t, ID: flagParentID}, nil
	}
	return prompter.AskParent()
}

// validated runs everything up to (not including) execution and returns
// what execution needs
type validated struct {
	client  *aspace.Client
	records []domain.MoveRecord
	parent  domain.Parent
	parentV domain.ParentValidation
	summary domain.ChildSummary
}

func validateRun(ctx context.Context, cfg *config.Config, logger *slog.Logger, prompter *ui.Prompter, path string) (*validated, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Normalize before touching the API so unusable input fails without
	// a single request.
	table, err := spreadsheet.Load(path)
	if err != nil {
		return nil, err
	}
	records, err := spreadsheet.Normalize(table, spreadsheet.Options{
		ExtraAliases: cfg.Input.IDColumnAliases,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("processing %s: %w", path, err)
	}
	fmt.Printf("Processed %d records from %s\n", len(records), path)

	client := aspace.New(aspace.Options{
		BaseURL:    cfg.API.BaseURL,
		Username:   cfg.API.Username,
		Password:   cfg.API.Password,
		Repository: cfg.API.Repository,
		Timeout:    cfg.Timeout(),
		Logger:     logger,
	})
	if err := client.Login(ctx); err != nil {
		return nil, err
	}
	fmt.Println("Authentication successful.")

	parent, err := resolveParent(prompter)
	if err != nil {
		return nil, err
	}

	checker := validate.New(client, cfg.API.Repository, logger)

	parentV := checker.Parent(ctx, parent)
	fmt.Println(ui.RenderParentValidation(parent, parentV))
	if !parentV.Exists {
		return nil, fmt.Errorf("parent record validation failed; cannot proceed")
	}

	resourceID, ok := checker.ResourceID(ctx, parent)
	if ok {
		fmt.Printf("Resource id derived from parent: %d\n", resourceID)
	}

	sampleSize := cfg.Moves.SampleSize
	if flagSampleSize > 0 {
		sampleSize = flagSampleSize
	}
	ids := make([]int, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	summary := checker.Children(ctx, ids, parent, resourceID, sampleSize)
	fmt.Println(ui.RenderChildSummary(parent, summary))

	return &validated{
		client:  client,
		records: records,
		parent:  parent,
		parentV: parentV,
		summary: summary,
	}, nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, logger, done, err := setup()
	if err != nil {
		return err
	}
	defer done()

	prompter := ui.NewPrompter(os.Stdin, os.Stdout)
	v, err := validateRun(cmd.Context(), cfg, logger, prompter, inputFile(cfg, args))
	if err != nil {
		return err
	}

	fmt.Println(ui.RenderRunSummary(v.parent, v.parentV, v.summary, len(v.records)))
	if !v.summary.OK() {
		return fmt.Errorf("child record validation would block this run")
	}
	return nil
}

func runReorder(cmd *cobra.Command, args []string) error {
	cfg, logger, done, err := setup()
	if err != nil {
		return err
	}
	defer done()

	ctx := cmd.Context()
	prompter := ui.NewPrompter(os.Stdin, os.Stdout)
	fmt.Println(ui.Title("ArchivesSpace Reorder Tool"))

	v, err := validateRun(ctx, cfg, logger, prompter, inputFile(cfg, args))
	if err != nil {
		return err
	}

	fmt.Println(ui.RenderRunSummary(v.parent, v.parentV, v.summary, len(v.records)))
	if !v.summary.OK() {
		return fmt.Errorf("child record validation blocks this run; fix the reported records or the input file")
	}

	if !flagYes {
		question := "Do you want to proceed with the reordering?"
		if v.summary.ReparentingDetected {
			question = "This will move objects to a DIFFERENT parent record. Proceed with the reparenting?"
		}
		if !prompter.Confirm(question) {
			fmt.Println("Operation cancelled.")
			return nil
		}
	}

	mode := flagMode
	if mode == "" {
		if flagYes {
			mode = "bulk"
		} else if mode, err = prompter.ChooseMode(); err != nil {
			return err
		}
	}
	if mode != "individual" && mode != "bulk" {
		return fmt.Errorf("invalid mode %q (expected individual or bulk)", mode)
	}

	store, err := runlog.New(cfg.Log.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening run history: %w", err)
	}
	defer store.Close()

	run, err := store.BeginRun(v.parent, mode, len(v.records))
	if err != nil {
		return fmt.Errorf("recording run start: %w", err)
	}
	logger = logger.With("run_id", run.ID)

	m := mover.New(v.client, logger)
	var result *domain.BulkResult
	var execErr error

	switch mode {
	case "individual":
		result, execErr = m.Individual(ctx, v.parent, v.records, func(o domain.MoveOutcome) {
			fmt.Println(ui.RenderItemOutcome(o))
		})
	case "bulk":
		opts := mover.DefaultOptions()
		opts.BatchSize = cfg.Moves.BatchSize
		opts.RequestDelay = cfg.RequestDelay()
		opts.BatchDelay = cfg.BatchDelay()
		if flagBatchSize > 0 {
			opts.BatchSize = flagBatchSize
		}
		result, execErr = m.Bulk(ctx, v.parent, v.records, opts, func(p mover.BatchProgress) {
			fmt.Println(ui.RenderBatchProgress(p))
		})
	}

	return finishRun(store, run, result, execErr, cfg.Log.File)
}

func finishRun(store *runlog.Store, run *runlog.Run, result *domain.BulkResult, execErr error, logFile string) error {
	if result == nil {
		_ = store.FinishRun(run.ID, runlog.RunFailed, 0, 0)
		return execErr
	}

	if err := store.RecordOutcomes(run.ID, result.Outcomes); err != nil {
		fmt.Fprintln(os.Stderr, "warning: could not record outcomes:", err)
	}
	for _, o := range result.Outcomes {
		if o.Status == domain.MoveFailed {
			_ = store.Log(run.ID, "error", fmt.Sprintf("object %d at position %d: %s", o.ObjectID, o.Position, o.Detail))
		}
	}

	status := runlog.RunCompleted
	switch {
	case execErr != nil && errors.Is(execErr, context.Canceled):
		status = runlog.RunCancelled
	case execErr != nil, result.SuccessCount == 0 && result.Total > 0:
		status = runlog.RunFailed
	}
	_ = store.FinishRun(run.ID, status, result.SuccessCount, result.ErrorCount)

	fmt.Println(ui.RenderResult(result, logFile))

	if execErr != nil {
		return fmt.Errorf("run interrupted after %d of %d moves: %w", len(result.Outcomes), result.Total, execErr)
	}
	if result.SuccessCount == 0 && result.Total > 0 {
		return fmt.Errorf("all %d moves failed; see %s", result.Total, logFile)
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, _, done, err := setup()
	if err != nil {
		return err
	}
	defer done()

	store, err := runlog.New(cfg.Log.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	if len(args) == 1 {
		run, err := store.GetRun(args[0])
		if err != nil {
			return fmt.Errorf("run %s not found: %w", args[0], err)
		}
		outcomes, err := store.Outcomes(run.ID)
		if err != nil {
			return err
		}
		fmt.Printf("Run %s: %s %s, %d total, %d ok, %d failed\n",
			run.ID, run.Mode, run.Parent.String(), run.Total, run.SuccessCount, run.ErrorCount)
		fmt.Fprintln(w, "OBJECT\tPOSITION\tSTATUS\tDETAIL")
		for _, o := range outcomes {
			detail := ""
			if o.Status == domain.MoveFailed {
				detail = o.Detail
			}
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", o.ObjectID, o.Position, o.Status, detail)
		}
		return w.Flush()
	}

	runs, err := store.ListRuns(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	fmt.Fprintln(w, "ID\tSTARTED\tPARENT\tMODE\tSTATUS\tTOTAL\tOK\tFAILED")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04"), r.Parent.String(), r.Mode, r.Status,
			r.Total, r.SuccessCount, r.ErrorCount)
	}
	return w.Flush()
}
