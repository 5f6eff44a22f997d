package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"anima-hq/tulpa/pkg/config"
	"anima-hq/tulpa/pkg/decisions"
	"anima-hq/tulpa/pkg/dispatch"
	"anima-hq/tulpa/pkg/facts"
	"anima-hq/tulpa/pkg/script/eval"
	"anima-hq/tulpa/pkg/source"
	"anima-hq/tulpa/pkg/store"
	"anima-hq/tulpa/pkg/telemetry/logging"
	"anima-hq/tulpa/pkg/telemetry/metrics"
)

var runFlags struct {
	logLevel string
	dryRun   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the evaluation loop",
	Long: `Load entities from the configured source, watch for changes, and
evaluate trigger events read as JSON lines on stdin. Each decision is
printed as a JSON line on stdout; $retry directives schedule deferred
re-evaluations through the dispatcher.

An event line looks like:

  {"channel":"c1","entity":"luna","content":"hi luna","author":"alice","mentioned":true,"dt_ms":90000}

Examples:
  # Start with default config
  tulpa run

  # Start with custom config
  tulpa run --config /etc/tulpa/config.yaml

  # Validate config without starting
  tulpa run --dry-run`,
	RunE: runLoop,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting")
}

// event is one trigger read from stdin.
type event struct {
	Channel     string   `json:"channel"`
	Entity      string   `json:"entity"`
	Content     string   `json:"content"`
	Author      string   `json:"author"`
	Mentioned   bool     `json:"mentioned"`
	Replied     bool     `json:"replied"`
	Forward     bool     `json:"forward"`
	Self        bool     `json:"self"`
	DtMs        float64  `json:"dt_ms"`
	Chars       []string `json:"chars"`
	ChannelName string   `json:"channel_name"`
	Topic       string   `json:"topic"`
	NSFW        bool     `json:"nsfw"`
}

// decision is one evaluation outcome written to stdout.
type decision struct {
	Channel  string   `json:"channel"`
	Entity   string   `json:"entity"`
	Decision string   `json:"decision"`
	RetryMs  int      `json:"retry_ms,omitempty"`
	Facts    []string `json:"facts,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

// registry is the in-memory entity set, replaced wholesale on reload.
type registry struct {
	mu       sync.RWMutex
	entities map[string]*facts.Entity
}

func (r *registry) replace(list []*facts.Entity) {
	m := make(map[string]*facts.Entity, len(list))
	for _, e := range list {
		m[e.ID] = e
	}
	r.mu.Lock()
	r.entities = m
	r.mu.Unlock()
}

func (r *registry) get(id string) *facts.Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entities[id]
}

// logNotifier logs owner notifications. A chat deployment would replace
// it with a direct-message sender.
type logNotifier struct {
	logger *slog.Logger
}

func (n *logNotifier) NotifyOwner(entityID, ownerID, message string) {
	n.logger.Warn("owner notification",
		"entity_id", entityID,
		"owner_id", ownerID,
		"message", message,
	)
}

func runLoop(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	if runFlags.logLevel != "" {
		cfg.Logging.Level = runFlags.logLevel
	}
	logger := logging.Setup(&cfg.Logging)

	if runFlags.dryRun {
		fmt.Println("configuration valid")
		return nil
	}

	// Metrics
	var observer facts.Observer
	if cfg.Metrics.Enabled {
		promReg := prometheus.NewRegistry()
		collector := metrics.NewCollector(&cfg.Metrics, promReg)
		observer = collector
		if cfg.Metrics.ListenAddress != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler(promReg))
			go func() {
				logger.Info("metrics listening", "address", cfg.Metrics.ListenAddress)
				if err := http.ListenAndServe(cfg.Metrics.ListenAddress, mux); err != nil {
					logger.Error("metrics server failed", "error", err)
				}
			}()
		}
	}

	// Entity source
	reg := &registry{entities: make(map[string]*facts.Entity)}
	src := source.NewFileSource(cfg.Source.Path, logger)

	// Optional persistent mirror of the loaded entity set.
	var entityStore *store.SQLiteStore
	if cfg.Store.Path != "" {
		entityStore, err = store.Open(store.Config{
			Path:        cfg.Store.Path,
			BusyTimeout: cfg.Store.BusyTimeout,
		})
		if err != nil {
			return fmt.Errorf("failed to open entity store: %w", err)
		}
		defer entityStore.Close()
	}

	reload := func() {
		list, err := src.Load()
		if err != nil {
			logger.Error("entity reload failed", "error", err)
			return
		}
		reg.replace(list)
		if entityStore != nil {
			for _, e := range list {
				if err := entityStore.PutEntity(context.Background(), e); err != nil {
					logger.Warn("entity store write failed", "entity_id", e.ID, "error", err)
				}
			}
		}
		logger.Info("entities loaded", "count", len(list))
	}
	reload()

	if cfg.Source.Watch {
		watcher, err := source.NewWatcher(cfg.Source.Path, cfg.Source.DebounceInterval, reload, logger)
		if err != nil {
			return fmt.Errorf("failed to create source watcher: %w", err)
		}
		if err := watcher.Start(); err != nil {
			return fmt.Errorf("failed to start source watcher: %w", err)
		}
		defer watcher.Stop()
	}

	// Decision log
	var recorder *decisions.Recorder
	if cfg.Decisions.Path != "" {
		decStore, err := decisions.OpenStore(cfg.Decisions.Path)
		if err != nil {
			return fmt.Errorf("failed to open decision store: %w", err)
		}
		defer decStore.Close()
		recorder = decisions.NewRecorder(decStore, logger)

		if cfg.Decisions.PruneSchedule != "" {
			pruner := decisions.NewPruner(decStore, decisions.RetentionConfig{
				MaxAge:        cfg.Decisions.MaxAge,
				PruneSchedule: cfg.Decisions.PruneSchedule,
			}, logger)
			scheduler := decisions.NewScheduler(pruner)
			if err := scheduler.Start(context.Background()); err != nil {
				logger.Warn("failed to start retention scheduler", "error", err)
			} else {
				defer scheduler.Stop()
			}
		}
	}

	engine := facts.NewEngine(
		logger.With("component", "facts.engine"),
		&logNotifier{logger: logger},
		observer,
	)

	dispatcher := dispatch.NewDispatcher(&dispatch.Config{
		MaxRetryChain:   cfg.Dispatch.MaxRetryChain,
		MaxRetryElapsed: cfg.Dispatch.MaxRetryElapsed,
	}, logger)
	defer dispatcher.Close()

	out := json.NewEncoder(os.Stdout)
	var outMu sync.Mutex

	logger.Info("tulpa running", "version", Version, "source", cfg.Source.Path)

	// Event loop: stdin EOF or a signal ends the run.
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case sig := <-sigCh:
			logger.Info("shutting down", "signal", sig.String())
			return nil
		case line, ok := <-lines:
			if !ok {
				logger.Info("stdin closed, shutting down")
				return nil
			}
			if line == "" {
				continue
			}
			var ev event
			if err := json.Unmarshal([]byte(line), &ev); err != nil {
				logger.Warn("bad event line", "error", err)
				continue
			}
			entity := reg.get(ev.Entity)
			if entity == nil {
				logger.Warn("unknown entity", "entity_id", ev.Entity)
				continue
			}

			started := time.Now()
			dispatcher.Dispatch(ev.Channel,
				func(leg dispatch.Leg) *facts.Result {
					return engine.Evaluate(entity, contextFor(&ev, entity, leg))
				},
				func(res *facts.Result) {
					if recorder != nil {
						recorder.Record(context.Background(), entity.ID, ev.Channel, res, time.Since(started))
					}
					d := decision{
						Channel:  ev.Channel,
						Entity:   entity.ID,
						Decision: res.Decision(),
						RetryMs:  res.RetryMs,
						Facts:    res.Facts,
					}
					for _, e := range res.Errors {
						d.Errors = append(d.Errors, e.Error())
					}
					outMu.Lock()
					if err := out.Encode(d); err != nil {
						logger.Error("failed to write decision", "error", err)
					}
					outMu.Unlock()
				},
			)
		}
	}
}

// contextFor builds the expression context for one evaluation leg. Retry
// legs advance elapsed and dt and drop the mention flag, since the
// original mention does not carry into the deferred pass.
func contextFor(ev *event, entity *facts.Entity, leg dispatch.Leg) *eval.Context {
	now := time.Now()
	hour := now.Hour()
	ctx := &eval.Context{
		Mentioned: ev.Mentioned,
		Replied:   ev.Replied,
		IsForward: ev.Forward,
		IsSelf:    ev.Self,
		DtMs:      ev.DtMs,
		ElapsedMs: float64(leg.Elapsed.Milliseconds()),
		Content:   ev.Content,
		Author:    ev.Author,
		Name:      entity.Name,
		Chars:     ev.Chars,
		Time: eval.TimeInfo{
			Hour:    hour,
			Minute:  now.Minute(),
			Weekday: now.Weekday().String(),
			IsDay:   hour >= 7 && hour < 23,
			IsNight: hour < 7 || hour >= 23,
		},
		Channel: eval.ChannelInfo{
			Name:  ev.ChannelName,
			Topic: ev.Topic,
			NSFW:  ev.NSFW,
		},
		Facts: entity.Facts,
	}
	if leg.Retry {
		ctx.Mentioned = false
		ctx.Replied = false
		ctx.DtMs = ev.DtMs + float64(leg.Elapsed.Milliseconds())
	}
	return ctx
}
