package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/callsight/callsight/internal/scan"
	"github.com/callsight/callsight/internal/vulns"
)

var version = "dev"

func main() {
	var (
		vulnPath    = flag.String("vulns", "", "path to a vulnerability JSON file")
		changed     = flag.String("changed", "", "comma-separated changed-file list for incremental scope")
		strategy    = flag.String("strategy", "auto", "reachability strategy: auto, source, buildgraph")
		verbose     = flag.Bool("v", false, "debug logging")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("callsight", version)
		return
	}
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: callsight [flags] <project-root>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	opts := scan.Options{
		Root:     flag.Arg(0),
		Strategy: scan.Strategy(*strategy),
		Logger:   log,
	}
	if *changed != "" {
		opts.Changed = strings.Split(*changed, ",")
	}
	if *vulnPath != "" {
		list, err := vulns.LoadFile(*vulnPath)
		if err != nil {
			log.Error("vulns.load", "error", err)
			os.Exit(1)
		}
		opts.Vulnerabilities = list
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := scan.Run(ctx, opts)
	if err != nil {
		log.Error("scan.failed", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Error("report.encode", "error", err)
		os.Exit(1)
	}
}
