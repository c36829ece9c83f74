package cmd

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/daytrader/advisory"
	"github.com/rustyeddy/daytrader/broker"
	"github.com/rustyeddy/daytrader/config"
	"github.com/rustyeddy/daytrader/engine"
	"github.com/rustyeddy/daytrader/journal"
	"github.com/rustyeddy/daytrader/marketdata"
	"github.com/rustyeddy/daytrader/position"
	"github.com/rustyeddy/daytrader/risk"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scan loop",
	Long: `Run the periodic scan loop against the configured universe.

Paper mode (the default) simulates fills in-process. Live mode requires a
brokerage gateway: set DAYTRADER_BROKER_URL and DAYTRADER_BROKER_API_KEY.

Example:
  daytrader run --config configs/config.yaml`,
	RunE: runRun,
}

var (
	runConfigPath  string
	runLive        bool
	runInterval    int
	runMetricsAddr string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "configs/config.yaml", "path to config file")
	runCmd.Flags().BoolVar(&runLive, "live", false, "trade through the live brokerage gateway (default is paper)")
	runCmd.Flags().IntVar(&runInterval, "interval", 0, "scan interval override, seconds")
	runCmd.Flags().StringVar(&runMetricsAddr, "metrics-addr", ":9090", "prometheus /metrics listen address")
}

func runRun(cmd *cobra.Command, args []string) error {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if runInterval > 0 {
		cfg.System.ScanIntervalSec = runInterval
	}

	timeout := time.Duration(cfg.System.CollaboratorTimeoutSec) * time.Second

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Market data
	var provider marketdata.Provider
	switch cfg.Data.Source {
	case "stream":
		sp := marketdata.NewStreamProvider(cfg.Data.StreamURL, 2*time.Duration(cfg.System.ScanIntervalSec)*time.Second)
		go sp.Run(ctx)
		provider = sp
	default:
		provider = marketdata.NewHTTPClient(cfg.Data.BaseURL, cfg.Data.APIKey, timeout)
	}

	// Advisory
	var adv advisory.Advisor = advisory.Disabled{}
	if cfg.Advisory.Enabled {
		adv = advisory.NewClient(cfg.Advisory.BaseURL, cfg.Advisory.Model, cfg.Advisory.APIKey,
			time.Duration(cfg.Advisory.TimeoutSec)*time.Second)
	}

	// Broker
	var b broker.Broker
	if runLive {
		baseURL := os.Getenv("DAYTRADER_BROKER_URL")
		apiKey := os.Getenv("DAYTRADER_BROKER_API_KEY")
		if baseURL == "" || apiKey == "" {
			return fmt.Errorf("live mode requires DAYTRADER_BROKER_URL and DAYTRADER_BROKER_API_KEY")
		}
		b = broker.NewHTTPBroker(baseURL, apiKey, timeout)
		log.Println("[INFO] LIVE trading mode")
	} else {
		b = broker.NewPaperBroker()
		log.Println("[INFO] paper trading mode")
	}

	// Journal
	var j journal.Journal
	switch cfg.Journal.Type {
	case "sqlite":
		j, err = journal.NewSQLite(cfg.Journal.DBPath)
	case "csv":
		j, err = journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
	default:
		j = journal.Noop{}
	}
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	rm := risk.NewManager(risk.Policy{
		StartingBalance: cfg.Account.StartingBalance,
		RiskPerTradePct: cfg.Account.RiskPerTradePct,
		MinPositionPct:  cfg.Account.MinPositionPct,
		MaxPositionPct:  cfg.Account.MaxPositionPct,
		ShareIncrement:  cfg.Account.ShareIncrement,
		CashReservePct:  cfg.Account.CashReservePct,
		MaxDailyLossPct: cfg.Account.MaxDailyLossPct,
		MaxPositions:    cfg.Account.MaxPositions,
		MaxSectorPct:    cfg.Account.MaxSectorPct,
	})

	lc := position.NewEngine(position.ExitRules{
		UseTrailingStops:     cfg.Exit.UseTrailingStops,
		TrailingStopDistance: cfg.Exit.TrailingStopDistance,
		TimeBasedExit:        cfg.Exit.TimeBasedExit,
		MaxHoldTime:          time.Duration(cfg.Exit.MaxHoldTimeHours * float64(time.Hour)),
		MaxAdverseExcursion:  cfg.Exit.MaxAdverseExcursion,
	}, b, rm, j)

	// Metrics endpoint
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(runMetricsAddr, mux); err != nil && err != http.ErrServerClosed {
			log.Printf("[WARN] metrics server: %v", err)
		}
	}()
	log.Printf("[INFO] metrics at %s/metrics", runMetricsAddr)

	eng := engine.New(cfg, provider, adv, b, rm, lc, j)
	return eng.Run(ctx)
}
