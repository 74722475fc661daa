package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/stepwise/internal/config"
	"github.com/muurk/stepwise/internal/discovery"
	"github.com/muurk/stepwise/internal/logging"
	"github.com/muurk/stepwise/internal/server"
	"github.com/muurk/stepwise/internal/ui"
	"github.com/muurk/stepwise/internal/wizard/tui"
)

// Shared flags
var (
	definitionFile string
	outputFormat   string
)

// run flags
var (
	initialStep string
	logFile     string
	plain       bool
)

// serve flags
var (
	host        string
	port        int
	logLevel    string
	advertise   bool
	sessionTTL  time.Duration
	maxSessions int
)

// init / discover flags
var (
	force       bool
	scanTimeout int
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&definitionFile, "file", "f", "", "Wizard definition file (.yaml, .yml or .toml; default: config dir wizard.yaml)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "text", "Output format (text, json)")

	// run flags also apply to the bare root command
	for _, c := range []*cobra.Command{rootCmd, runCmd} {
		c.Flags().StringVar(&initialStep, "initial", "", "Initial step, by index or step ID (overrides the definition)")
		c.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file (the terminal UI owns stdout)")
		c.Flags().BoolVar(&plain, "plain", false, "Render step bodies as plain text instead of markdown")
	}

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(pathsCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(discoverCmd)
}

// loadDefinition loads --file (or the default definition) and applies
// --initial
func loadDefinition() (*config.Definition, error) {
	def, err := config.Load(definitionFile)
	if err != nil {
		return nil, err
	}

	if initialStep == "" {
		return def, nil
	}

	if i, err := strconv.Atoi(initialStep); err == nil {
		def.InitialStep = i
	} else if i, ok := def.StepByID(initialStep); ok {
		def.InitialStep = i
	} else {
		return nil, fmt.Errorf("unknown step %q", initialStep)
	}

	if err := config.Validate(def); err != nil {
		return nil, err
	}
	return def, nil
}

// printDefinitionError prints schema/validation violations in a failure box
func printDefinitionError(err error) {
	violations := config.Violations(err)
	if len(violations) == 0 {
		return
	}
	fmt.Fprintln(os.Stderr, ui.NewFailureResult(describeSource()+" is invalid", nil, violations).Render())
}

// runCmd launches the terminal wizard
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the wizard in the terminal",
	Long: `Run a wizard as a full-screen terminal application.

Keys:
  →/n, ←/p      next / previous step
  1-9           go to step
  r             restart at the initial step
  enter         next, or complete on the last step
  esc/c         cancel
  [ / ]         history back / forward
  s             start again from the cancelled/completed screen
  q             quit`,
	Example: `  # Run the built-in demo (or the default definition file)
  stepwise

  # Run a specific definition starting at its second step
  stepwise run --file onboarding.yaml --initial 1

  # Start at a step by ID and keep a debug log
  STEPWISE_LOG_LEVEL=debug stepwise run -f onboarding.toml --initial review --log-file wizard.log`,
	RunE: runWizard,
}

func runWizard(cmd *cobra.Command, args []string) error {
	if logFile != "" {
		level := os.Getenv(logging.LogLevelEnvVar)
		if level == "" {
			level = "info"
		}
		if err := logging.InitializeWithOutput(level, logFile); err != nil {
			return err
		}
	} else {
		// stdout belongs to the terminal UI
		logging.SetLogger(nil)
	}
	defer logging.Sync()

	def, err := loadDefinition()
	if err != nil {
		printDefinitionError(err)
		return err
	}

	opts := tui.Options{}
	if plain {
		opts.Renderer = tui.PlainRenderer
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := tui.Run(ctx, def, opts)
	if err != nil {
		return err
	}

	furthest := ui.Detail{Key: "Furthest step", Value: fmt.Sprintf("%d of %d", result.MaxStepReached+1, len(def.Steps))}
	switch result.Outcome {
	case tui.OutcomeCompleted:
		fmt.Println(ui.NewSuccessResult(def.Name+" completed", furthest).Render())
	case tui.OutcomeCancelled:
		fmt.Println(ui.NewWarningResult(def.Name+" cancelled", furthest,
			ui.Detail{Key: "Location", Value: result.Path},
		).Render())
	}
	return nil
}

// serveCmd runs the HTTP host
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the wizard over HTTP",
	Long: `Serve a wizard to browsers.

Every browser session gets its own wizard. Steps are real URL paths
(base path + step index + "/"), so the back button, bookmarks and typed
URLs all work. Location changes are streamed on /_wizard/events.

With --advertise the server registers itself over mDNS so 'stepwise discover'
can find it on the local network.`,
	Example: `  # Serve the default definition on port 8080
  stepwise serve

  # Serve a definition on all interfaces and advertise it
  stepwise serve --file onboarding.yaml --port 9000 --advertise

  # Debug logging
  stepwise serve --log-level debug`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&host, "host", "", "Listen address (empty = all interfaces)")
	serveCmd.Flags().IntVar(&port, "port", 8080, "Server port")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&advertise, "advertise", false, "Advertise the server over mDNS")
	serveCmd.Flags().DurationVar(&sessionTTL, "session-ttl", server.DefaultSessionTTL, "Unmount browser sessions idle for longer than this")
	serveCmd.Flags().IntVar(&maxSessions, "max-sessions", server.DefaultMaxSessions, "Maximum concurrent browser sessions")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}

	def, err := loadDefinition()
	if err != nil {
		printDefinitionError(err)
		return err
	}

	srv, err := server.New(&server.Config{
		Host:        host,
		Port:        port,
		LogLevel:    logLevel,
		Advertise:   advertise,
		SessionTTL:  sessionTTL,
		MaxSessions: maxSessions,
	}, def)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	fmt.Printf("Serving %q on http://%s:%d%s\n", def.Name, displayHost(host), port, def.BasePath)
	return srv.Start()
}

func displayHost(h string) string {
	if h == "" {
		return "localhost"
	}
	return h
}

// validateCmd checks a definition file
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a wizard definition",
	Long: `Check a definition file against the definition schema and the
navigation rules: at least one step, initial step in range, absolute
locations ending in "/", unique step IDs, and no step location shared with
the cancelled or completed location.`,
	Example: `  stepwise validate --file onboarding.yaml
  stepwise validate -f onboarding.toml --format json`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	if err := logging.InitializeFromEnv(); err != nil {
		return err
	}

	def, err := loadDefinition()

	if outputFormat == "json" {
		report := struct {
			Valid      bool     `json:"valid"`
			Error      string   `json:"error,omitempty"`
			Violations []string `json:"violations,omitempty"`
			Steps      int      `json:"steps,omitempty"`
		}{Valid: err == nil}
		if err != nil {
			report.Error = err.Error()
			report.Violations = config.Violations(err)
		} else {
			report.Steps = len(def.Steps)
		}
		if encErr := printJSON(report); encErr != nil {
			return encErr
		}
		return err
	}

	if err != nil {
		printDefinitionError(err)
		return err
	}

	fmt.Println(ui.NewSuccessResult(describeSource()+" is valid",
		ui.Detail{Key: "Name", Value: def.Name},
		ui.Detail{Key: "Steps", Value: strconv.Itoa(len(def.Steps))},
		ui.Detail{Key: "Initial", Value: def.Locations()[def.InitialStep]},
		ui.Detail{Key: "Cancelled", Value: def.CancelledPath},
		ui.Detail{Key: "Completed", Value: def.CompletedPath},
	).Render())
	return nil
}

func describeSource() string {
	if definitionFile != "" {
		return definitionFile
	}
	return "definition"
}

// pathsCmd lists the locations a definition addresses
var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "List the locations of a wizard",
	Long: `Print the location of every step followed by the cancelled and
completed locations.`,
	Example: `  stepwise paths --file onboarding.yaml
  stepwise paths --format json`,
	RunE: runPaths,
}

func runPaths(cmd *cobra.Command, args []string) error {
	if err := logging.InitializeFromEnv(); err != nil {
		return err
	}

	def, err := loadDefinition()
	if err != nil {
		printDefinitionError(err)
		return err
	}

	locations := def.Locations()
	n := len(def.Steps)

	if outputFormat == "json" {
		type stepPath struct {
			Index int    `json:"index"`
			ID    string `json:"id"`
			Title string `json:"title"`
			Path  string `json:"path"`
		}
		out := struct {
			Steps     []stepPath `json:"steps"`
			Cancelled string     `json:"cancelled"`
			Completed string     `json:"completed"`
		}{
			Cancelled: locations[n],
			Completed: locations[n+1],
		}
		for i, s := range def.Steps {
			out.Steps = append(out.Steps, stepPath{Index: i, ID: s.ID, Title: s.Title, Path: locations[i]})
		}
		return printJSON(out)
	}

	for i, s := range def.Steps {
		marker := " "
		if i == def.InitialStep {
			marker = "*"
		}
		fmt.Printf("%s %-24s %s (%s)\n", marker, locations[i], s.Title, s.ID)
	}
	fmt.Printf("  %-24s cancelled\n", locations[n])
	fmt.Printf("  %-24s completed\n", locations[n+1])
	return nil
}

// initCmd writes the demo definition as a starting point
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the demo wizard definition",
	Long: `Write the built-in three step wizard to --file, or to wizard.yaml in the
configuration directory when --file is not given. The extension picks the
encoding (.yaml, .yml or .toml).`,
	Example: `  stepwise init
  stepwise init --file onboarding.toml
  stepwise init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file without asking")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := definitionFile
	if path == "" {
		var err error
		path, err = config.GetConfigPath()
		if err != nil {
			return err
		}
	}

	if _, err := os.Stat(path); err == nil && !force {
		confirmed := ui.Confirm(os.Stdin, os.Stdout, "Definition file exists",
			[]string{path, "Its steps will be replaced by the demo wizard"},
			"Overwrite?")
		if !confirmed {
			return nil
		}
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}

	def := config.NewDefinition()
	if err := config.Save(def, path); err != nil {
		return err
	}
	fmt.Println(ui.NewSuccessResult("Wrote demo wizard",
		ui.Detail{Key: "File", Value: path},
		ui.Detail{Key: "Steps", Value: strconv.Itoa(len(def.Steps))},
	).Render())
	return nil
}

// discoverCmd finds advertised wizard servers
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find wizard servers on the local network",
	Long:  `Browse mDNS for servers started with 'stepwise serve --advertise'.`,
	Example: `  stepwise discover
  stepwise discover --timeout 10 --format json`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&scanTimeout, "timeout", 5, "Scan timeout in seconds")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if err := logging.InitializeFromEnv(); err != nil {
		return err
	}

	if outputFormat != "json" {
		fmt.Printf("Scanning for wizard servers (timeout: %ds)...\n\n", scanTimeout)
	}

	hosts, err := discovery.Scan(cmd.Context(), time.Duration(scanTimeout)*time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if outputFormat == "json" {
		type entry struct {
			Wizard string `json:"wizard"`
			URL    string `json:"url"`
			Steps  int    `json:"steps"`
		}
		out := make([]entry, 0, len(hosts))
		for _, h := range hosts {
			out = append(out, entry{Wizard: h.Wizard, URL: h.URL(), Steps: h.Steps})
		}
		return printJSON(out)
	}

	if len(hosts) == 0 {
		r := ui.NewWarningResult("No wizard servers found",
			ui.Detail{Key: "Timeout", Value: fmt.Sprintf("%ds", scanTimeout)},
		)
		r.ItemsTitle = "Troubleshooting:"
		r.Items = []string{
			"Start the server with 'stepwise serve --advertise'",
			"Make sure both machines are on the same network",
			"Try increasing --timeout",
		}
		fmt.Println(r.Render())
		return nil
	}

	fmt.Printf("Found %d server(s):\n\n", len(hosts))
	for i, h := range hosts {
		fmt.Printf("%d. %s\n", i+1, h.Wizard)
		fmt.Printf("   URL:     %s\n", h.URL())
		fmt.Printf("   Steps:   %d\n", h.Steps)
		fmt.Printf("   Host:    %s\n", h.Hostname)
		if v := h.GetMetadata("version"); v != "" {
			fmt.Printf("   Version: %s\n", v)
		}
		fmt.Println()
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
