package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ayusman/panicpoppers/internal/app"
	"github.com/ayusman/panicpoppers/internal/config"
	"github.com/ayusman/panicpoppers/internal/logger"
)

func main() {
	envFile := flag.String("env", "", "load settings from this .env file instead of ./.env")
	preset := flag.String("preset", "", "game preset ("+strings.Join(config.PresetNames(), ", ")+")")
	renderer := flag.String("renderer", "", "renderer: window or terminal")
	listPresets := flag.Bool("list-presets", false, "print the presets and exit")
	flag.Parse()

	if *listPresets {
		for _, name := range config.PresetNames() {
			fmt.Println(name)
		}
		return
	}

	// Flags override the environment and the .env file.
	if *preset != "" {
		os.Setenv("POPPERS_PRESET", *preset)
	}
	if *renderer != "" {
		os.Setenv("POPPERS_RENDERER", *renderer)
	}

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	rt := cfg.Runtime
	if rt.LogFile != "" {
		f, err := logger.InitFile(rt.LogFile, rt.LogLevel, rt.LogJSON)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file: %v\n", err)
			os.Exit(2)
		}
		defer f.Close()
	} else if rt.Renderer == config.RendererTerminal {
		// Log lines on stderr would scribble over the terminal renderer.
		logger.Init("error", rt.LogJSON)
	} else {
		logger.Init(rt.LogLevel, rt.LogJSON)
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg, app.Deps{}, log)
	if err != nil {
		logger.Fatal("start game", "error", err)
	}

	err = a.Run(ctx)
	a.Close()

	if err != nil {
		if app.IsCaptureLoss(err) {
			log.Error("camera stopped delivering frames", "error", err)
		} else {
			log.Error("game stopped", "error", err)
		}
		os.Exit(1)
	}
}
