package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/term"

	"codebuilder/pkg/agent"
	"codebuilder/pkg/architect"
	"codebuilder/pkg/coder"
	"codebuilder/pkg/config"
	"codebuilder/pkg/logx"
	"codebuilder/pkg/metrics"
	"codebuilder/pkg/pipeline"
	"codebuilder/pkg/planner"
	"codebuilder/pkg/templates"
	"codebuilder/pkg/tools"
	"codebuilder/pkg/workspace"
)

func main() {
	var configPath string
	var prompt string
	var projectRoot string
	var stepBudget int
	var metricsAddr string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&prompt, "prompt", "", "Project description (read interactively if omitted)")
	flag.StringVar(&projectRoot, "root", "", "Project root directory for generated files")
	flag.IntVar(&stepBudget, "budget", 0, "Maximum pipeline steps per run")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "Listen address for Prometheus metrics (e.g. :9090)")
	flag.Parse()

	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}
	if configPath == "" {
		configPath = "config/config.json"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if projectRoot != "" {
		cfg.ProjectRoot = projectRoot
	}
	if stepBudget > 0 {
		cfg.StepBudget = stepBudget
	}
	if metricsAddr != "" {
		cfg.MetricsAddr = metricsAddr
	}

	if cfg.LogFile != "" {
		logx.EnableFileLogging(cfg.LogFile)
	}
	logger := logx.NewLogger("main")

	if prompt == "" {
		prompt, err = readPrompt()
		if err != nil {
			log.Fatalf("Failed to read prompt: %v", err)
		}
	}
	if strings.TrimSpace(prompt) == "" {
		log.Fatal("No project description provided")
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, logger)
	}

	client, err := agent.NewClient(cfg, logx.NewLogger("llm"))
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}

	renderer, err := templates.NewRenderer()
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	ws, err := workspace.NewDir(cfg.ProjectRoot)
	if err != nil {
		log.Fatalf("Failed to create workspace: %v", err)
	}
	registry := tools.NewRegistry()
	if err := tools.RegisterWorkspaceTools(registry, ws); err != nil {
		log.Fatalf("Failed to register tools: %v", err)
	}

	recorder := metrics.NewPrometheusRecorder()
	driver := pipeline.NewDriver(
		planner.New(client, renderer),
		architect.New(client, renderer),
		coder.New(client, renderer),
		ws, recorder, cfg.StepBudget,
	)
	runner := pipeline.NewRetryRunner(driver, cfg.RetryDelay(), pipeline.WithRecorder(recorder))

	logger.Info("starting run (provider=%s model=%s root=%s)", cfg.Provider, client.GetModelName(), ws.Root())
	started := time.Now()
	result, err := runner.Run(context.Background(), prompt)
	if err != nil {
		reportFailure(result, err)
		os.Exit(1)
	}

	logger.Info("run finished in %s", time.Since(started).Round(time.Millisecond))
	if err := displayProject(registry); err != nil {
		log.Fatalf("Failed to display generated project: %v", err)
	}
	reportSummary(result, ws.Root())
}

// readPrompt asks for the project description on a terminal, or reads one
// line from stdin when input is piped.
func readPrompt() (string, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Print("Describe the application to build: ")
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func serveMetrics(addr string, logger *logx.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info("metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped: %v", err)
	}
}

// displayProject prints every generated file through the tool layer, the
// same surface any other front end would use.
func displayProject(registry *tools.Registry) error {
	ctx := context.Background()

	list, err := registry.Get(tools.ToolListFiles)
	if err != nil {
		return err
	}
	listing, err := list.Exec(ctx, nil)
	if err != nil {
		return err
	}

	fmt.Println()
	content, _ := listing["content"].(string)
	if content == tools.NoFilesSentinel {
		fmt.Println(tools.NoFilesSentinel)
		return nil
	}

	read, err := registry.Get(tools.ToolReadFile)
	if err != nil {
		return err
	}
	files, _ := listing["files"].([]string)
	for _, path := range files {
		result, err := read.Exec(ctx, map[string]any{"path": path})
		if err != nil {
			return err
		}
		fmt.Printf("===== %s =====\n", path)
		fmt.Println(result["content"])
		fmt.Println()
	}
	return nil
}

func reportSummary(result *pipeline.RunResult, root string) {
	fmt.Printf("Run %s: %d files written to %s (%d steps used)\n",
		result.RunID, len(result.FilesWritten), root, result.StepsUsed)
	for path, reason := range result.FailedFiles {
		fmt.Printf("  failed: %s (%s)\n", path, reason)
	}
}

func reportFailure(result *pipeline.RunResult, err error) {
	fmt.Fprintf(os.Stderr, "Run failed: %v\n", err)
	if result != nil {
		fmt.Fprintf(os.Stderr, "  kind: %s, state: %s, files written before failure: %d\n",
			result.ErrorKind, result.State, len(result.FilesWritten))
	}
}
