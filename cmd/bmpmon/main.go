// Package main is the entry point of the bmpmon monitor. It loads the
// settings and sensor configuration, constructs the acquisition controller
// and the web layer, and runs until interrupted.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"bmpmon/internal/app"
	"bmpmon/internal/core"
	"bmpmon/internal/util"
)

func main() {
	util.SetupLogger()

	// optional .env for deployment overrides
	if err := godotenv.Load(); err == nil {
		log.Println("[Main] loaded environment from .env")
	}

	cfgPath := flag.String("c", "bmpmon.conf", "path to sensor configuration file")
	settingsPath := flag.String("s", "configs/dashboard.yml", "path to dashboard settings file")
	filename := flag.String("f", "", "data file name (default data_<timestamp>.csv)")
	baud := flag.Int("b", 0, "baud rate override (9600 or 115200)")
	delim := flag.String("d", "", "CSV delimiter override (single character)")
	listen := flag.String("listen", "", "web server address (overrides settings file)")
	flag.Parse()

	settings, err := app.LoadSettings(*settingsPath)
	if err != nil {
		util.Error("%v", err)
	}
	if *listen != "" {
		settings.ListenAddr = *listen
	}
	if addr := os.Getenv("BMPMON_LISTEN"); addr != "" && *listen == "" {
		settings.ListenAddr = addr
	}
	if path := os.Getenv("BMPMON_CONFIG"); path != "" && *cfgPath == "bmpmon.conf" {
		*cfgPath = path
	}

	var delimiter byte
	if *delim != "" {
		if len(*delim) != 1 {
			log.Fatalf("invalid delimiter %q: must be a single character", *delim)
		}
		delimiter = (*delim)[0]
	}

	ctrl, err := core.NewController(core.Options{
		ConfigPath:     *cfgPath,
		DataDir:        settings.DataDir,
		Filename:       *filename,
		BaudRate:       *baud,
		Delimiter:      delimiter,
		DevicePrefixes: settings.DevicePrefixes,
	})
	if err != nil {
		log.Fatalf("failed to create controller: %v", err)
	}

	web := app.New(ctrl)
	go func() {
		if err := web.Start(settings.ListenAddr); err != nil {
			log.Fatalf("web server failed: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		log.Println("[Main] shutting down...")
		cancel()
	}()

	ctrl.Run(ctx)
	web.Stop()
	log.Println("[Main] stopped cleanly.")
}
