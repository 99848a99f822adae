package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/soracom/connectivity-benchmark/internal/api"
	"github.com/soracom/connectivity-benchmark/internal/auth"
	"github.com/soracom/connectivity-benchmark/internal/benchmark"
	"github.com/soracom/connectivity-benchmark/internal/config"
	"github.com/soracom/connectivity-benchmark/internal/logic"
	"github.com/soracom/connectivity-benchmark/internal/mccmnc"
	"github.com/soracom/connectivity-benchmark/internal/modem"
	"github.com/soracom/connectivity-benchmark/internal/report"
	"github.com/soracom/connectivity-benchmark/internal/repository"
	"github.com/soracom/connectivity-benchmark/internal/soracom"
	"github.com/soracom/connectivity-benchmark/internal/transport"
	"github.com/soracom/connectivity-benchmark/pkg/logger"
)

const usage = `usage: cellbench [command]

commands:
  run               run the benchmark once (default)
  serve             serve the run history API
  token <subject>   print an API token (-ttl duration, default 24h)
`

func main() {
	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Init Logger
	logger.InitLogger(cfg.Log.Level)

	cmd, args := "run", os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	var code int
	switch cmd {
	case "run":
		code = runBenchmark(cfg)
	case "serve":
		code = serve(cfg)
	case "token":
		code = issueToken(cfg, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		code = 2
	}
	logger.Sync()
	os.Exit(code)
}

func runBenchmark(cfg *config.Config) int {
	logger.Log.Info("Starting!")

	creds, err := cfg.Soracom.Credentials()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	act, err := modem.ParseAccessTechnology(cfg.Benchmark.AccessTechnology)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	// Load MCCMNC
	if err := mccmnc.LoadOperators(cfg.Report.OperatorsFile); err != nil {
		logger.Log.Warnf("Failed to load MCC/MNC data: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	portName, err := resolvePort(ctx, cfg.Serial)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to find modem port: %v\n", err)
		return 1
	}

	recorder := logic.NewRecorder(openRunStore(cfg), logic.NewNotifier(logic.NotifierConfig{
		SlackURL:       cfg.Webhook.SlackURL,
		TelegramToken:  cfg.Webhook.TelegramToken,
		TelegramChatID: cfg.Webhook.TelegramChatID,
		Template:       cfg.Webhook.Template,
	}))
	run := recorder.Start(portName, act.String())
	logger.Log.Infof("Run %s on %s", run.ID, portName)

	m, err := modem.New(ctx, modem.Config{
		Name:        portName,
		Dialer:      dialer(cfg.Serial, portName),
		APN:         cfg.Benchmark.APN,
		ClearNetPar: cfg.Benchmark.ClearNetPar,
	})
	if err != nil {
		res := &benchmark.Result{AccessTechnology: act, FinalState: benchmark.Failed}
		err = &benchmark.StepError{Step: "open modem", Err: err}
		recorder.Finish(res, err)
		report.NewConsole(os.Stdout).Print(res, err)
		return 1
	}

	runner := benchmark.NewRunner(m, soracom.NewClient(cfg.Soracom.APIRoot, nil), benchmark.Config{
		Credentials:          creds,
		Activate:             cfg.Benchmark.Activate,
		AccessTechnology:     act,
		PollInterval:         cfg.Benchmark.PollInterval,
		MaxRegistrationTicks: cfg.Benchmark.MaxRegistrationTicks,
		MaxOnlinePolls:       cfg.Benchmark.MaxOnlinePolls,
		LowPowerSettle:       cfg.Benchmark.LowPowerSettle,
		ResetSettle:          cfg.Benchmark.ResetSettle,
		FactoryResetSettle:   cfg.Benchmark.FactoryResetSettle,
	}, benchmark.WithObserver(recorder.Observe))

	res, err := runner.Run(ctx)
	recorder.Finish(res, err)
	report.NewConsole(os.Stdout).Print(res, err)
	if err != nil {
		return 1
	}
	return 0
}

func dialer(sc config.SerialConfig, name string) transport.Dialer {
	return transport.SerialDialer{PortName: name, BaudRate: sc.BaudRate, ReadTimeout: sc.ReadTimeout}
}

func resolvePort(ctx context.Context, sc config.SerialConfig) (string, error) {
	if sc.Port != "auto" {
		return sc.Port, nil
	}
	return transport.Discover(ctx, func(name string) transport.Dialer {
		return dialer(sc, name)
	}, sc.ExcludePorts)
}

// openRunStore returns nil when the database is unavailable; the run then
// goes unrecorded rather than failing.
func openRunStore(cfg *config.Config) *repository.RunRepository {
	db, err := repository.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Log.Warnf("Run history disabled: %v", err)
		return nil
	}
	repo := repository.NewRunRepository(db)
	if n, err := repo.MarkInterrupted(); err != nil {
		logger.Log.Warnf("Failed to mark interrupted runs: %v", err)
	} else if n > 0 {
		logger.Log.Infof("Marked %d unfinished runs as interrupted", n)
	}
	return repo
}

func serve(cfg *config.Config) int {
	if cfg.Server.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "server.jwt_secret (SERVER_JWT_SECRET) must be set")
		return 1
	}
	db, err := repository.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Log.Errorf("Failed to open database: %v", err)
		return 1
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: api.NewRouter(repository.NewRunRepository(db), cfg.Server.JWTSecret),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Infof("Server listening on %s", cfg.Server.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		logger.Log.Errorf("Server failed to start: %v", err)
		return 1
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Errorf("Server shutdown: %v", err)
		return 1
	}
	logger.Log.Info("Server stopped")
	return 0
}

func issueToken(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	token, err := auth.GenerateToken(fs.Arg(0), *ttl, cfg.Server.JWTSecret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate token: %v\n", err)
		return 1
	}
	fmt.Println(token)
	return 0
}
