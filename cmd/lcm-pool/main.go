// Package main is the entry point for lcm-pool.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"lcm-pool/internal/api"
	"lcm-pool/internal/config"
	"lcm-pool/internal/input"
	"lcm-pool/internal/logger"
	"lcm-pool/internal/report"
	"lcm-pool/internal/worker"
)

var (
	version = "dev"
)

// options はコマンドラインフラグの値
type options struct {
	configFile string
	bound      uint64
	workers    int
	logLevel   string
	jsonOutput bool
	serverMode bool
	serverAddr string
}

func main() {
	var (
		opts        options
		showVersion bool
	)
	flag.StringVar(&opts.configFile, "config", "", "設定ファイルパス (YAML/JSON)")
	flag.Uint64Var(&opts.bound, "bound", 0, "入力値と素数テーブルの上限 (既定 10000、最大 67108864)")
	flag.IntVar(&opts.workers, "workers", 0, "ワーカー数 (0でCPU数、1以下なら4)")
	flag.StringVar(&opts.logLevel, "log-level", "", "ログレベル (debug, info, warn, error)")
	flag.BoolVar(&opts.jsonOutput, "json", false, "結果をJSONで出力")
	flag.BoolVar(&opts.serverMode, "server", false, "HTTPサーバーモードで起動")
	flag.StringVar(&opts.serverAddr, "addr", "", "サーバーアドレス (例: :8080)")
	flag.BoolVar(&showVersion, "version", false, "バージョンを表示")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `lcm-pool - Concurrent prime factorization and LCM

Usage:
  lcm-pool [options]

Options:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # 0 を入力するまで数を読み込み、LCM を表示
  echo "4 6 0" | lcm-pool

  # 上限とワーカー数を指定
  lcm-pool --bound 100000 --workers 8

  # 設定ファイルから実行
  lcm-pool --config lcm.yaml

  # HTTPサーバーモードで起動
  lcm-pool --server --addr :3000
`)
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("lcm-pool version %s\n", version)
		return
	}

	cfg, err := buildConfig(opts)
	if err != nil {
		logger.Error("", "設定エラー: %v", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel())

	if cfg.Server.Enabled {
		if err := runServer(cfg); err != nil {
			logger.Error("", "サーバーエラー: %v", err)
			os.Exit(1)
		}
		return
	}

	if err := runInteractive(cfg, os.Stdin, os.Stdout); err != nil {
		logger.Error("", "実行エラー: %v", err)
		os.Exit(1)
	}
}

// buildConfig は設定ファイルとフラグから設定を構築する
func buildConfig(opts options) (*config.FileConfig, error) {
	cfg := config.Default()

	// 1. 設定ファイルから読み込み
	if opts.configFile != "" {
		fileConfig, err := config.LoadFile(opts.configFile)
		if err != nil {
			return nil, fmt.Errorf("設定ファイル読み込みエラー: %w", err)
		}
		cfg = fileConfig
	}

	// 2. フラグでオーバーライド
	if opts.bound > 0 {
		cfg.Pool.Bound = opts.bound
	}
	if opts.workers > 0 {
		cfg.Pool.Workers = opts.workers
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.jsonOutput {
		cfg.Output.Format = "json"
	}
	if opts.serverMode {
		cfg.Server.Enabled = true
	}
	if opts.serverAddr != "" {
		cfg.Server.Addr = opts.serverAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定検証エラー: %w", err)
	}
	return cfg, nil
}

// runInteractive は 0 まで入力を読み、全ワーカーの結果をマージして出力する
func runInteractive(cfg *config.FileConfig, in *os.File, out io.Writer) error {
	pool := worker.NewPoolWithConfig(cfg.ToPoolConfig())
	if err := pool.Start(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\n中断シグナルを受信、入力を終了して集計します...")
			cancel()
		case <-ctx.Done():
		}
	}()

	loop := input.NewInteractive(in, os.Stderr, worker.ErrOutOfRange)

	// 読み込みはブロックするので、中断時は待たずに集計へ進む
	type readResult struct {
		stats input.Stats
		err   error
	}
	readCh := make(chan readResult, 1)
	go func() {
		stats, err := loop.Run(ctx, pool)
		readCh <- readResult{stats, err}
	}()

	var readErr error
	select {
	case r := <-readCh:
		readErr = r.err
		logger.Info("", "Input finished: %d read, %d submitted, %d out of range, %d invalid",
			r.stats.Read, r.stats.Submitted, r.stats.OutOfRange, r.stats.Invalid)
	case <-ctx.Done():
		readErr = ctx.Err()
	}

	result, err := pool.Shutdown()
	if err != nil {
		return err
	}

	if readErr != nil && !errors.Is(readErr, context.Canceled) {
		return readErr
	}

	if cfg.JSONOutput() {
		return report.JSON(out, result.Table)
	}
	return report.Text(out, result.Table)
}

// runServer はHTTPサーバーを起動する
func runServer(cfg *config.FileConfig) error {
	fmt.Println("lcm-pool - HTTP Server")
	fmt.Println("======================")
	fmt.Printf("Starting server on http://%s\n", cfg.Server.Addr)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\n中断シグナルを受信、サーバーを終了中...")
		cancel()
	}()

	server, err := api.NewServer(cfg.Server.Addr, cfg.ToPoolConfig())
	if err != nil {
		return err
	}
	return server.Start(ctx)
}
