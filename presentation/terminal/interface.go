package terminal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"quote_automation/application/flow"
	"quote_automation/application/interactor"
	"quote_automation/application/pages"
	"quote_automation/application/scenario"
	"quote_automation/domain/entities"
	"quote_automation/domain/interfaces"
	"quote_automation/infrastructure/browser"
	"quote_automation/infrastructure/config"
	"quote_automation/infrastructure/logging"
	"quote_automation/infrastructure/storage"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// travelDateLayout is how travel dates appear in the calendar aria-labels
const travelDateLayout = "January 2, 2006"

// LaunchFunc starts a browser engine for a run
type LaunchFunc func(cfg config.Config, logger *logrus.Logger) (interfaces.Page, error)

type TerminalInterface struct {
	out     io.Writer
	launch  LaunchFunc
	envFile string
	root    *cobra.Command
}

func NewTerminalInterface() *TerminalInterface {
	t := &TerminalInterface{out: os.Stdout, launch: LaunchBrowser}
	t.root = t.command()
	return t
}

// LaunchBrowser starts the engine named in cfg
func LaunchBrowser(cfg config.Config, logger *logrus.Logger) (interfaces.Page, error) {
	opts := browser.Options{
		Headless:       cfg.Headless,
		SlowMo:         cfg.SlowMo,
		DefaultTimeout: cfg.DefaultTimeout,
		DriverPath:     cfg.DriverPath,
		ChromeBinary:   cfg.ChromeBinary,
	}
	switch cfg.Engine {
	case config.EngineSelenium:
		return browser.NewSeleniumController(opts, logger)
	default:
		return browser.NewPlaywrightController(opts, logger)
	}
}

func (t *TerminalInterface) command() *cobra.Command {
	root := &cobra.Command{
		Use:   "quoteflow",
		Short: "Browser-driven end-to-end check of the rental cover quote flow",
		Long: `quoteflow drives the rental cover landing page through a complete quote
(destination, travel dates, country of residence, vehicle, state) and asserts
that the confirmation page appears.

Logs, screenshots and the run report are written under the results directory.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&t.envFile, "env-file", "", "Load settings from this file instead of .env")

	run := &cobra.Command{
		Use:   "run",
		Short: "Run the quote scenario",
		Args:  cobra.NoArgs,
		RunE:  t.runScenario,
	}
	run.Flags().String("url", "", "Start URL (QUOTE_START_URL)")
	run.Flags().String("engine", "", "Browser engine: playwright, selenium (BROWSER_ENGINE)")
	run.Flags().Bool("headless", true, "Run the browser without a window (HEADLESS)")
	run.Flags().Duration("slow-mo", 0, "Delay between browser operations (SLOW_MO_MS)")
	run.Flags().String("results-dir", "", "Directory for logs, screenshots and the report (RESULTS_DIR)")
	run.Flags().Duration("timeout", 0, "Default element wait (DEFAULT_TIMEOUT_MS)")
	run.Flags().Duration("delay", 0, "Fallback settle delay (DEFAULT_DELAY_MS)")
	run.Flags().String("log-level", "", "debug, info, warn or error (LOG_LEVEL)")

	locators := &cobra.Command{
		Use:   "locators",
		Short: "Print the landing page locator table",
		Args:  cobra.NoArgs,
		RunE:  t.printLocators,
	}

	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Print run log records at or above a level",
		Args:  cobra.NoArgs,
		RunE:  t.printLog,
	}
	logCmd.Flags().String("results-dir", "", "Directory holding test-run.log (RESULTS_DIR)")
	logCmd.Flags().String("level", "debug", "Lowest level to print: debug, info, warn, error")

	root.AddCommand(run, locators, logCmd)
	return root
}

// Run executes the command line
func (t *TerminalInterface) Run(args []string) error {
	t.root.SetArgs(args)
	t.root.SetOut(t.out)
	return t.root.Execute()
}

func (t *TerminalInterface) loadConfig(cmd *cobra.Command) (config.Config, error) {
	var files []string
	if t.envFile != "" {
		files = append(files, t.envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return config.Config{}, err
	}

	// Changed is false for flags a command does not define
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.StartURL, _ = flags.GetString("url")
	}
	if flags.Changed("engine") {
		cfg.Engine, _ = flags.GetString("engine")
	}
	if flags.Changed("headless") {
		cfg.Headless, _ = flags.GetBool("headless")
	}
	if flags.Changed("slow-mo") {
		cfg.SlowMo, _ = flags.GetDuration("slow-mo")
	}
	if flags.Changed("results-dir") {
		cfg.ResultsDir, _ = flags.GetString("results-dir")
	}
	if flags.Changed("timeout") {
		cfg.DefaultTimeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("delay") {
		cfg.DefaultDelay, _ = flags.GetDuration("delay")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	return cfg, cfg.Validate()
}

func (t *TerminalInterface) runScenario(cmd *cobra.Command, _ []string) error {
	cfg, err := t.loadConfig(cmd)
	if err != nil {
		return err
	}
	params, err := flowParams(cfg)
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logger := logging.ForResultsDir(cfg.ResultsDir, level)

	page, err := t.launch(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize browser: %w", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			logger.Warnf("Browser close: %v", err)
		}
	}()

	vars := landingVars(cfg)
	landing, err := pages.NewLandingPage(page, vars)
	if err != nil {
		return err
	}

	store := storage.NewArtifactStore(cfg.ResultsDir)
	ui := interactor.NewElementInteractor(page, store, logger, interactor.Options{
		DefaultTimeout: cfg.DefaultTimeout,
		DefaultDelay:   cfg.DefaultDelay,
	})
	quote := flow.NewQuoteFlow(ui, landing, logger, params)
	runner := scenario.NewRunner(ui, store, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fmt.Fprintf(t.out, "→ Running %s on %s (%s)\n", flow.ScenarioName, cfg.StartURL, cfg.Engine)
	report, runErr := runner.Run(ctx, quote.Scenario(cfg.StartURL))
	t.printReport(report)
	return runErr
}

func (t *TerminalInterface) printReport(report *entities.RunReport) {
	for _, s := range report.Steps {
		mark := " "
		switch s.Status {
		case entities.StatusCompleted:
			mark = "✓"
		case entities.StatusFailed:
			mark = "✗"
		case entities.StatusSkipped:
			mark = "-"
		}
		fmt.Fprintf(t.out, "  %s %-26s %s\n", mark, s.Name, s.Duration.Round(time.Millisecond))
		if s.Error != "" {
			fmt.Fprintf(t.out, "      %s\n", s.Error)
		}
	}
	fmt.Fprintf(t.out, "Run %s: %s\n", report.RunID, report.Status)
}

func (t *TerminalInterface) printLocators(cmd *cobra.Command, _ []string) error {
	cfg, err := t.loadConfig(cmd)
	if err != nil {
		return err
	}
	model, err := pages.NewLandingPage(nil, landingVars(cfg))
	if err != nil {
		return err
	}
	for _, key := range model.Keys() {
		sel, _ := model.Selector(key)
		fmt.Fprintf(t.out, "%-22s %-6s %s\n", key, sel.Strategy, sel.Value)
	}
	return nil
}

func (t *TerminalInterface) printLog(cmd *cobra.Command, _ []string) error {
	cfg, err := t.loadConfig(cmd)
	if err != nil {
		return err
	}
	name, _ := cmd.Flags().GetString("level")
	floor, ok := logSeverity[entities.LogLevel(strings.ToUpper(strings.TrimSpace(name)))]
	if !ok {
		return fmt.Errorf("invalid log level %q", name)
	}

	path := filepath.Join(cfg.ResultsDir, logging.LogFileName)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open run log: %w", err)
	}
	defer f.Close()

	malformed := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		record, err := entities.ParseLogRecord(scanner.Text())
		if err != nil {
			malformed++
			continue
		}
		if logSeverity[record.Level] >= floor {
			fmt.Fprintln(t.out, record.String())
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read run log: %w", err)
	}
	if malformed > 0 {
		fmt.Fprintf(t.out, "(%d malformed lines skipped)\n", malformed)
	}
	return nil
}

var logSeverity = map[entities.LogLevel]int{
	entities.LogDebug: 0,
	entities.LogInfo:  1,
	entities.LogWarn:  2,
	entities.LogError: 3,
}

func landingVars(cfg config.Config) pages.LandingVars {
	vars := pages.DefaultLandingVars()
	vars.StartDate = cfg.TravelStartDate
	vars.EndDate = cfg.TravelEndDate
	return vars
}

// flowParams derives the calendar day labels from the configured travel dates
func flowParams(cfg config.Config) (flow.Params, error) {
	params := flow.DefaultParams()
	start, err := time.Parse(travelDateLayout, cfg.TravelStartDate)
	if err != nil {
		return params, fmt.Errorf("invalid travel start date %q: %w", cfg.TravelStartDate, err)
	}
	end, err := time.Parse(travelDateLayout, cfg.TravelEndDate)
	if err != nil {
		return params, fmt.Errorf("invalid travel end date %q: %w", cfg.TravelEndDate, err)
	}
	if end.Before(start) {
		return params, fmt.Errorf("travel end date %s is before start date %s", cfg.TravelEndDate, cfg.TravelStartDate)
	}
	params.StartDay = strconv.Itoa(start.Day())
	params.EndDay = strconv.Itoa(end.Day())
	return params, nil
}
