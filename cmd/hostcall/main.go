package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/hostcall"
	"github.com/wippyai/hostcall/config"
	"github.com/wippyai/hostcall/fdtable"
	"github.com/wippyai/hostcall/guest"
	"github.com/wippyai/hostcall/host"
	"github.com/wippyai/hostcall/metrics"
	"github.com/wippyai/hostcall/sharedmem"
	"github.com/wippyai/hostcall/transport"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Path to YAML config file")
		logLevel    = flag.String("log-level", "", "Override log level (debug, info, warn, error)")
		demo        = flag.String("demo", "pipe", "Demo to run against the local host (pipe, udp)")
		interactive = flag.Bool("i", false, "Interactive adversarial host inspector")
	)
	flag.Parse()

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: -i needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*configFile, *logLevel, *demo); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile, logLevel, demo string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, err := cfg.Log.NewLogger()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()
	sharedmem.SetLogger(logger.Named("sharedmem"))
	transport.SetLogger(logger.Named("transport"))
	host.SetLogger(logger.Named("host"))
	guest.SetLogger(logger.Named("guest"))

	mem, closeMem, err := openBlock(ctx, cfg.Block)
	if err != nil {
		return err
	}
	defer closeMem()

	table := fdtable.New(fdtable.WithStdio())
	defer table.Close()
	exec := host.New(host.WithTable(table))
	if err := checkDemo(exec, demo); err != nil {
		return err
	}

	tr, closeTr := openTransport(cfg.Transport, exec, mem)
	defer closeTr()

	opts := []guest.Option{guest.WithTimeout(cfg.Transport.Timeout)}
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		opts = append(opts, guest.WithMetrics(metrics.New(reg)))
		shutdown := serveMetrics(logger, cfg.Metrics.Addr, reg)
		defer shutdown()
	}

	g, err := guest.New(mem, tr, opts...)
	if err != nil {
		return err
	}
	logger.Info("guest ready",
		zap.Uint32("block_size", mem.Size()),
		zap.Uint32("arena_capacity", g.Capacity()),
		zap.String("backing", cfg.Block.Backing),
		zap.String("transport", cfg.Transport.Mode))

	switch demo {
	case "pipe":
		return pipeDemo(ctx, g, table)
	case "udp":
		return udpDemo(ctx, g, table)
	default:
		return fmt.Errorf("unknown demo %q", demo)
	}
}

func openBlock(ctx context.Context, cfg config.BlockConfig) (hostcall.Memory, func(), error) {
	if cfg.Backing == config.BackingSlice {
		return sharedmem.NewSlice(cfg.Size), func() {}, nil
	}
	region, err := sharedmem.NewWazero(ctx, sharedmem.PagesFor(cfg.Size))
	if err != nil {
		return nil, nil, err
	}
	return region, func() { region.Close(context.Background()) }, nil
}

func openTransport(cfg config.TransportConfig, exec transport.Executor, mem hostcall.Memory) (transport.Transport, func()) {
	if cfg.Mode == config.ModeDirect {
		return transport.NewDirect(exec, mem), func() {}
	}
	ch := transport.NewChannel(exec, mem)
	ch.Start()
	return ch, func() { ch.Close() }
}

func serveMetrics(logger *zap.Logger, addr string, reg *prometheus.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}
