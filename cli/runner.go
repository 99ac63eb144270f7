// Command execution for CLI commands.
//
// Information Hiding:
// - Provider and planner setup hidden
// - Output formatting hidden

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dheerajsharma2399/ai-task-planning-agent/config"
	"github.com/dheerajsharma2399/ai-task-planning-agent/internal/logging"
	"github.com/dheerajsharma2399/ai-task-planning-agent/llm"
	"github.com/dheerajsharma2399/ai-task-planning-agent/planner"
	"github.com/dheerajsharma2399/ai-task-planning-agent/server"
	"github.com/dheerajsharma2399/ai-task-planning-agent/storage"
	"github.com/dheerajsharma2399/ai-task-planning-agent/tools"
)

// Options holds CLI execution options.
type Options struct {
	Provider string
	Model    string
	DBPath   string
}

// DefaultOptions returns default CLI options.
func DefaultOptions() Options {
	return Options{
		Provider: "openrouter",
		DBPath:   "task_plans.db",
	}
}

// Plan generates a plan for the goal, stores it, and prints it.
// With stream set, generated prose is echoed as it arrives.
func Plan(ctx context.Context, goal string, stream bool, opts Options) error {
	p, settings, err := createPlanner(opts)
	if err != nil {
		return err
	}

	store, err := storage.OpenSqlite(opts.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	fmt.Printf("Planning with %s...\n\n", settings.LLM.Provider)

	var plan *planner.TaskPlan
	if stream {
		chunks := make(chan string, 16)
		done := make(chan struct{})
		go func() {
			for chunk := range chunks {
				fmt.Print(chunk)
			}
			fmt.Println()
			close(done)
		}()
		plan, err = p.PlanStreaming(ctx, goal, chunks)
		<-done
	} else {
		plan, err = p.Plan(ctx, goal)
	}
	if err != nil {
		return err
	}

	id, err := store.SavePlan(ctx, plan)
	if err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}

	if !stream {
		printPlan(plan)
	}
	fmt.Printf("Saved as plan #%d\n", id)
	return nil
}

// History lists stored plans, optionally filtered by goal prefix.
func History(ctx context.Context, prefix string, limit int, opts Options) error {
	store, err := storage.OpenSqlite(opts.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	var summaries []storage.PlanSummary
	if prefix != "" {
		summaries, err = store.SearchByGoalPrefix(ctx, prefix)
	} else {
		summaries, err = store.ListPlans(ctx, limit)
	}
	if err != nil {
		return err
	}

	if len(summaries) == 0 {
		fmt.Println("No plans found.")
		return nil
	}

	for _, summary := range summaries {
		location := summary.Location
		if location == "" {
			location = "-"
		}
		fmt.Printf("#%-4d %s  [%d days, %s]  %s\n",
			summary.ID, summary.Goal, summary.TotalDays, location, summary.CreatedAt)
	}
	return nil
}

// Show prints a stored plan in full.
func Show(ctx context.Context, id int64, opts Options) error {
	store, err := storage.OpenSqlite(opts.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	stored, err := store.GetPlan(ctx, id)
	if err != nil {
		return err
	}
	if stored == nil {
		return fmt.Errorf("plan #%d not found", id)
	}

	printPlan(stored.Plan)
	return nil
}

// Delete removes a stored plan.
func Delete(ctx context.Context, id int64, opts Options) error {
	store, err := storage.OpenSqlite(opts.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	if err := store.DeletePlan(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Deleted plan #%d\n", id)
	return nil
}

// Providers prints the supported providers and their defaults.
func Providers() {
	fmt.Println("Supported providers:")
	fmt.Println()
	for _, providerType := range llm.ProviderTypes {
		key := "no API key needed"
		if providerType.RequiresAPIKey() {
			key = providerType.EnvVar()
		}
		fmt.Printf("  %-10s  default model: %-28s  (%s)\n",
			providerType.String(), providerType.DefaultModel(), key)
	}
	fmt.Println()
	fmt.Println("OpenRouter model catalog:")
	for _, model := range llm.OpenRouterModels {
		fmt.Printf("  %s\n", model)
	}
}

// Verify checks that the configured provider is reachable.
func Verify(ctx context.Context, opts Options) error {
	provider, _, err := createProvider(opts)
	if err != nil {
		return err
	}

	fmt.Printf("Verifying %s (%s)...\n", provider.Name(), provider.Model())
	if err := llm.NewClient(provider).Verify(ctx); err != nil {
		return err
	}
	fmt.Println("OK")
	return nil
}

// Serve runs the HTTP server until interrupted.
func Serve(ctx context.Context, addr string, opts Options) error {
	settings, err := config.New(opts.Provider)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = settings.Server.Addr
	}

	store, err := storage.OpenSqlite(opts.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	srv := server.New(addr, server.NewHandlers(store, settings.Weather.APIKey, nil))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("server starting")
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return <-errCh
}

// createProvider builds the LLM provider from options and environment.
func createProvider(opts Options) (llm.Provider, config.Settings, error) {
	settings, err := config.New(opts.Provider)
	if err != nil {
		return nil, config.Settings{}, err
	}

	providerType, err := llm.ParseProviderType(settings.LLM.Provider)
	if err != nil {
		return nil, config.Settings{}, err
	}

	model := opts.Model
	if model == "" {
		model = settings.LLM.Model
	}

	builder := providerType.
		Model(model).
		MaxTokens(settings.LLM.MaxTokens).
		Temperature(float32(settings.LLM.Temperature)).
		OllamaHost(settings.LLM.OllamaHost)

	if !providerType.RequiresAPIKey() {
		provider, err := builder.APIKey("")
		return provider, settings, err
	}

	apiKey, err := config.APIKeyFor(settings.LLM.Provider)
	if err != nil {
		return nil, config.Settings{}, err
	}
	log.Debug().
		Str("provider", settings.LLM.Provider).
		Str("api_key", logging.MaskKey(apiKey)).
		Msg("provider configured")

	provider, err := builder.APIKey(apiKey)
	return provider, settings, err
}

func createPlanner(opts Options) (*planner.Planner, config.Settings, error) {
	provider, settings, err := createProvider(opts)
	if err != nil {
		return nil, settings, err
	}

	registry, err := tools.WithDefaults(settings.Weather.APIKey)
	if err != nil {
		return nil, settings, err
	}
	return planner.New(llm.NewClient(provider), registry), settings, nil
}

func printPlan(plan *planner.TaskPlan) {
	fmt.Printf("Goal: %s\n", plan.Goal)
	if plan.Metadata.Location != "" {
		fmt.Printf("Location: %s\n", plan.Metadata.Location)
	}
	fmt.Printf("Days: %d\n\n", plan.TotalDays)

	for _, day := range plan.Days {
		fmt.Printf("%s\n", day.Theme)
		if day.WeatherInfo != nil {
			fmt.Printf("  Weather: %.0f°C, %s\n", day.WeatherInfo.Temp, day.WeatherInfo.Condition)
		}
		for _, step := range day.Steps {
			fmt.Printf("  %d. %s\n", step.StepNumber, step.Description)
		}
		fmt.Println()
	}
}
