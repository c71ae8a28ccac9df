package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go-jobradar-automation/internal/browser"
	"go-jobradar-automation/internal/config"
	"go-jobradar-automation/internal/dedup"
	"go-jobradar-automation/internal/deliver"
	"go-jobradar-automation/internal/filter"
	"go-jobradar-automation/internal/jobs"
	"go-jobradar-automation/internal/orchestrator"
	"go-jobradar-automation/internal/schedule"
	"go-jobradar-automation/internal/sources/greenhouse"
	"go-jobradar-automation/internal/sources/linkedin"
	"go-jobradar-automation/internal/sources/remotive"
	"go-jobradar-automation/internal/store"
	"go-jobradar-automation/internal/telegram"
)

func main() {
	//optional single source name; no arg = full sweep
	var only string
	if len(os.Args) > 1 {
		only = os.Args[1]
	}

	//load config
	cfg := config.Load(os.Getenv("JOBRADAR_CONFIG"))
	log.Printf("🔧 Config loaded. %d sources, mode=%s, store=%s", len(cfg.Sources), cfg.RunMode, cfg.Store.Backend)

	if only != "" && !knownSource(cfg, only) {
		fmt.Fprintf(os.Stderr, "unknown source %q\nusage: jobradar [source-name]\nconfigured sources: %s\n",
			only, strings.Join(sourceNames(cfg), ", "))
		os.Exit(2)
	}

	//init telegram bot; failing to authenticate here is the one fatal path
	bot, err := telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		log.Fatalf("❌ Failed to init Telegram Bot: %v", err)
	}
	log.Println("🤖 Telegram Bot initialized.")

	//shutdown: stop starting new work, let in-flight writes finish, close store
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//record store; an unreachable store degrades dedup, it never stops the run
	recordStore := buildStore(cfg)
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := recordStore.Connect(connectCtx); err != nil {
		log.Printf("⚠️ Record store unreachable, dedup will be degraded this run: %v", err)
	}
	cancel()
	defer recordStore.Close()

	cache := dedup.NewCache(recordStore)
	cache.Load(ctx)

	//delivery routing: default chat plus one bot per configured category chat
	router := deliver.NewRouter(cfg.DeliveryCap, time.Duration(cfg.Pacing.InterMessageMs)*time.Millisecond)
	router.Register("default", bot)
	for category, chatID := range cfg.Channels {
		if category == "default" || chatID == 0 || chatID == cfg.TelegramChatID {
			continue
		}
		router.Register(category, bot.WithChat(chatID))
	}

	relevance := filter.NewRelevance(cfg.RoleCategories)

	orch := orchestrator.New(relevance, cache, router, orchestrator.Options{
		MaxAttempts:     cfg.Retry.Attempts,
		BackoffBase:     time.Duration(cfg.Retry.BackoffMs) * time.Millisecond,
		InterQueryDelay: time.Duration(cfg.Pacing.InterQueryMs) * time.Millisecond,
		JobLimit:        cfg.JobLimit(),
	})

	specs, cleanup := buildSpecs(cfg, only)
	defer cleanup()

	tierDelays := make(map[int]time.Duration, len(cfg.Pacing.TierDelaysSec))
	for tier, secs := range cfg.Pacing.TierDelaysSec {
		tierDelays[tier] = time.Duration(secs) * time.Second
	}
	scheduler := schedule.New(orch.RunSource, tierDelays)

	runOnce := func() {
		report := scheduler.Run(ctx, specs)
		finishRun(bot, cache, report)
	}

	if cfg.SweepEveryHours > 0 && only == "" {
		sweeper := schedule.NewSweeper(cfg.SweepEveryHours, runOnce)
		if err := sweeper.Start(); err != nil {
			log.Fatalf("❌ Failed to start sweeper: %v", err)
		}
		<-ctx.Done()
		sweeper.Stop()
		log.Println("🏁 Shutdown complete.")
		return
	}

	runOnce()
	log.Println("🏁 Execution finished.")
}

func knownSource(cfg *config.Config, name string) bool {
	for _, s := range cfg.Sources {
		if s.Name == name {
			return true
		}
	}
	return false
}

func sourceNames(cfg *config.Config) []string {
	names := make([]string, len(cfg.Sources))
	for i, s := range cfg.Sources {
		names[i] = s.Name
	}
	return names
}

func buildStore(cfg *config.Config) store.RecordStore {
	switch cfg.Store.Backend {
	case "postgres":
		return store.NewPostgresStore(cfg.Store.DatabaseURL)
	case "redis":
		return store.NewRedisStore(cfg.Store.RedisURL)
	default:
		return store.NewFileStore(cfg.Store.CachePath)
	}
}

// buildSpecs wires one adapter per configured source. The returned cleanup
// closes the shared browser if any source needed one. A source whose adapter
// could not be built keeps a nil adapter: the orchestrator reports it as a
// source-level failure without touching the other sources.
func buildSpecs(cfg *config.Config, only string) ([]jobs.SourceSpec, func()) {
	var mgr *browser.Manager
	cleanup := func() {
		if mgr != nil {
			mgr.Close()
		}
	}

	var specs []jobs.SourceSpec
	for _, sc := range cfg.Sources {
		if only != "" && sc.Name != only {
			continue
		}

		var adapter jobs.Adapter
		switch sc.Name {
		case "remotive":
			adapter = remotive.New(sc.APIBase)
		case "greenhouse":
			adapter = greenhouse.New(sc.APIBase, sc.Boards)
		case "linkedin":
			adapter = buildLinkedIn(cfg, &mgr)
		default:
			log.Printf("⚠️ Source %s has no adapter implementation", sc.Name)
		}

		specs = append(specs, jobs.SourceSpec{
			Name:          sc.Name,
			Tier:          sc.Tier,
			RoleCategory:  sc.RoleCategory,
			Keywords:      sc.Keywords,
			Locations:     sc.Locations,
			TimeFilter:    jobs.TimeFilter(sc.TimeFilter),
			RecencyWindow: time.Duration(sc.RecencyDays) * 24 * time.Hour,
			Adapter:       adapter,
		})
	}
	return specs, cleanup
}

func buildLinkedIn(cfg *config.Config, mgr **browser.Manager) jobs.Adapter {
	if *mgr == nil {
		m, err := browser.NewManager()
		if err != nil {
			log.Printf("❌ Failed to init browser for linkedin: %v", err)
			return nil
		}
		*mgr = m
	}

	cookiePath := filepath.Join(cfg.CookiesPath, "cookies-linkedin.json")
	loaded, err := browser.LoadCookies(cookiePath)
	if err != nil {
		log.Printf("⚠️ Could not load linkedin cookies: %v. Continuing as guest.", err)
	} else {
		log.Printf("🍪 Loaded linkedin cookies (%d)", len(loaded))
	}

	browserCtx, err := (*mgr).NewContext(loaded)
	if err != nil {
		log.Printf("❌ Failed to create browser context: %v", err)
		return nil
	}
	page, err := browserCtx.NewPage()
	if err != nil {
		log.Printf("❌ Failed to create page: %v", err)
		return nil
	}
	return linkedin.New(page)
}

// finishRun renders the sweep summary, sends the status line, and saves the
// report next to the screenshots for later inspection.
func finishRun(bot *telegram.Bot, cache *dedup.Cache, report jobs.OverallReport) {
	stats, total := cache.Stats()
	log.Printf("📊 Dedup cache now tracks %d jobs across %d sources", total, len(stats))

	status := fmt.Sprintf("Sweep done: %d jobs found, %d sources ok, %d failed.",
		report.TotalJobsFound, len(report.Successful), len(report.Failed))
	for _, f := range report.Failed {
		status += fmt.Sprintf("\n❌ %s: %v", f.Name, f.Err)
	}
	if err := bot.SendStatus(status); err != nil {
		log.Printf("⚠️ Failed to send status to Telegram: %v", err)
	}

	saveReport(report)
}

func saveReport(report jobs.OverallReport) {
	logDir := "logs"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Printf("⚠️ Failed to create logs directory: %v", err)
		return
	}

	//gen filename: sweep-YYYY-MM-DD.json
	filename := fmt.Sprintf("sweep-%s.json", time.Now().Format("2006-01-02"))
	path := filepath.Join(logDir, filename)

	type failedEntry struct {
		Name  string `json:"name"`
		Error string `json:"error"`
	}
	out := struct {
		Successful     []string      `json:"successful"`
		Failed         []failedEntry `json:"failed"`
		TotalJobsFound int           `json:"totalJobsFound"`
	}{
		Successful:     report.Successful,
		TotalJobsFound: report.TotalJobsFound,
	}
	for _, f := range report.Failed {
		out.Failed = append(out.Failed, failedEntry{Name: f.Name, Error: f.Err.Error()})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Printf("⚠️ Failed to marshal sweep report: %v", err)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Printf("⚠️ Failed to write sweep report: %v", err)
		return
	}
	log.Printf("📁 Sweep report saved to %s", path)
}
