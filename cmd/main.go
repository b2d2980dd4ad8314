package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	cli "github.com/jawher/mow.cli"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"smart-price-tracker/config"
	"smart-price-tracker/internal/alert"
	"smart-price-tracker/internal/api"
	"smart-price-tracker/internal/database"
	"smart-price-tracker/internal/notify"
	"smart-price-tracker/internal/oracle"
	"smart-price-tracker/internal/store"
	"smart-price-tracker/internal/telegram"
	"smart-price-tracker/internal/tracking"
	"smart-price-tracker/lib/translation"
)

const metricsSaveInterval = 5 * time.Minute

func init() {
	config.InitConfig()
	setupLogging()
}

type components struct {
	oracle  *oracle.Client
	store   *store.Store
	engine  *alert.Engine
	tracker *tracking.Tracker
	metrics *alert.Metrics
}

func main() {
	app := cli.App("price-tracker", "Tracks product prices and alerts when they drop to a threshold")

	app.Command("serve", "run the polling engine and the HTTP API", func(cmd *cli.Cmd) {
		cmd.Action = serve
	})

	app.Command("track", "track a product and check its price once", func(cmd *cli.Cmd) {
		cmd.Spec = "URL THRESHOLD"
		url := cmd.StringArg("URL", "", "product page URL")
		threshold := cmd.StringArg("THRESHOLD", "", "notify when the price is at or below this value")

		cmd.Action = func() {
			value, err := strconv.ParseFloat(*threshold, 64)
			if err != nil {
				log.Fatalf("Invalid threshold %q: %v", *threshold, err)
			}
			trackProduct(*url, value)
		}
	})

	app.Command("list", "list tracked products", func(cmd *cli.Cmd) {
		cmd.Action = listTracked
	})

	app.Command("check", "run a single polling cycle and exit", func(cmd *cli.Cmd) {
		cmd.Action = checkOnce
	})

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupLogging() {
	log.SetLevel(log.InfoLevel)
	gin.SetMode(gin.ReleaseMode)
	if config.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
		gin.SetMode(gin.DebugMode)
	}
	log.Debug("Starting price tracker...")
}

func openDatabase() {
	driver := config.GetString("database_driver")
	dsn := config.GetString("database_dsn")

	if driver == database.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			log.Fatalf("Failed to create database directory: %v", err)
		}
	}

	if err := database.InitDB(driver, dsn); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
}

func newComponents() *components {
	translation.Configure("locales", config.GetString("lang"))
	log.Infof("🌐 Notification language: %s", translation.GetLanguage())

	c := &components{
		oracle:  oracle.NewClient(config.GetString("oracle_url"), config.GetDuration("oracle_timeout")),
		store:   store.New(config.GetString("store_slot")),
		metrics: alert.NewMetrics(prometheus.DefaultRegisterer),
	}

	c.engine = alert.NewEngine(c.store, c.oracle, newNotifier())
	c.engine.History = store.History{}
	c.engine.Metrics = c.metrics
	c.engine.Interval = config.GetDuration("check_interval")
	c.engine.Workers = config.GetInt("check_workers")

	c.tracker = tracking.NewTracker(c.store, c.engine)
	c.tracker.Backend = c.oracle
	c.tracker.HistoryStore = store.History{}
	return c
}

func newNotifier() notify.Notifier {
	notifiers := notify.Multi{notify.Log{}}

	token := config.GetString("telegram_bot_token")
	chatID := config.GetInt64("telegram_chat_id")
	if token == "" || chatID == 0 {
		return notifiers
	}

	bot, err := telegram.NewBot(telegram.BotConfig{
		Token:  token,
		ChatID: chatID,
		Debug:  config.GetBool("debug"),
	})
	if err != nil {
		log.Errorf("Telegram notifications disabled: %v", err)
		return notifiers
	}
	return append(notifiers, bot)
}

func serve() {
	openDatabase()
	defer database.CloseDB()

	c := newComponents()
	c.metrics.LoadFromDB()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wg := &sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.engine.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(metricsSaveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.metrics.SaveToDB()
			}
		}
	}()

	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.GetInt("api_port")),
		Handler: api.Router(api.NewHandler(c.tracker)),
	}
	metricsServer := newMetricsAndHealthServer(config.GetInt("metrics_port"))

	for _, srv := range []*http.Server{apiServer, metricsServer} {
		go func(srv *http.Server) {
			log.Infof("Listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Server %s failed: %v", srv.Addr, err)
			}
		}(srv)
	}

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	for _, srv := range []*http.Server{apiServer, metricsServer} {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Server %s shutdown: %v", srv.Addr, err)
		}
	}

	wg.Wait()
	c.metrics.SaveToDB()
	log.Info("Metrics saved, shutting down...")
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func newMetricsAndHealthServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthCheckHandler)

	return &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
}

func trackProduct(url string, threshold float64) {
	if err := tracking.Validate(url, threshold); err != nil {
		log.Fatal(err)
	}

	openDatabase()
	defer database.CloseDB()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	item, err := newComponents().tracker.TrackProduct(ctx, url, threshold)
	if err != nil {
		log.Errorf("Failed to track %s: %v", url, err)
		cli.Exit(1)
	}
	fmt.Printf("Tracking %s at threshold %.2f\n", item.Key, item.ThresholdPrice)
}

func listTracked() {
	openDatabase()
	defer database.CloseDB()

	items := store.New(config.GetString("store_slot")).List(context.Background())
	if len(items) == 0 {
		fmt.Println("No tracked products.")
		return
	}
	for _, item := range items {
		fmt.Printf("%-60s  %10.2f  last alert %s\n", item.Key, item.ThresholdPrice, humanize.Time(item.LastCheckedAt))
	}
}

func checkOnce() {
	openDatabase()
	defer database.CloseDB()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := newComponents()
	c.metrics.LoadFromDB()
	report := c.engine.RunCycle(ctx)
	c.metrics.SaveToDB()

	fmt.Printf("Cycle %s: %d checked, %d failed, %d notified\n", report.ID, report.Checked, report.Failed, report.Notified)
}
