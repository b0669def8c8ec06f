// Package main provides the entry point for the Mini Annotator application.
package main

import (
	"os"
	"path/filepath"

	"mini-annotator/internal/app"
	"mini-annotator/internal/version"
	"mini-annotator/ui/mainwindow"
	"mini-annotator/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
	"github.com/charmbracelet/log"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "annotator"})
	logger.Info("starting", "version", version.Version)

	cfg, err := app.LoadConfig(app.ConfigPath())
	if err != nil {
		logger.Fatal("load config", "err", err)
	}

	appState := app.NewState(cfg)
	appPrefs := prefs.Load()

	fyneApp := fyneapp.NewWithID("mini-annotator")
	win := mainwindow.New(fyneApp, appState, appPrefs)

	// A directory argument overrides the remembered corpus.
	if len(os.Args) > 1 {
		annotationDir := cfg.AnnotationDir
		if annotationDir == "" {
			annotationDir = filepath.Join(os.Args[1], "annotations")
		}
		if err := appState.OpenCorpus(os.Args[1], annotationDir); err != nil {
			logger.Error("open corpus", "dir", os.Args[1], "err", err)
		}
	}

	win.ShowAndRun()
}
