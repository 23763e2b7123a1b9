package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/WendelHime/torrentinfo/internal/config"
	"github.com/WendelHime/torrentinfo/internal/decoder"
	"github.com/WendelHime/torrentinfo/internal/shared/models"
	"github.com/schollz/progressbar/v3"
	"gopkg.in/yaml.v3"
)

type report struct {
	Path    string          `yaml:"path"`
	Error   string          `yaml:"error,omitempty"`
	Torrent *models.Torrent `yaml:"torrent,omitempty"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("torrentinfo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var configPath string
	var showProgress bool
	fs.StringVar(&configPath, "config", "", "Specify a YAML config file")
	fs.BoolVar(&showProgress, "progress", false, "Show a progress bar while decoding")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: torrentinfo [-config file] [-progress] file.torrent...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := config.ReadConfigFromFile(configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	logOut := stderr
	if cfg.LogFile != "" {
		f, err := os.Create(cfg.LogFile)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		defer f.Close()
		logOut = f
	}
	logger, err := cfg.NewLogger(logOut)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	d := decoder.NewDecoder(decoder.WithLogger(logger), decoder.WithMaxSize(cfg.MaxMetafileSize))

	var bar *progressbar.ProgressBar
	if showProgress {
		bar = progressbar.NewOptions(fs.NArg(),
			progressbar.OptionSetWriter(stderr),
			progressbar.OptionSetDescription("decoding"),
			progressbar.OptionShowCount())
	}

	reports := make([]report, 0, fs.NArg())
	failed := 0
	for _, path := range fs.Args() {
		r := report{Path: path}
		torrent, err := d.DecodeFile(path)
		if err != nil {
			logger.Error("failed to decode torrent", slog.String("path", path), slog.Any("error", err))
			r.Error = err.Error()
			failed++
		} else {
			r.Torrent = &torrent
		}
		reports = append(reports, r)
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(stderr)
	}

	enc := yaml.NewEncoder(stdout)
	defer enc.Close()
	if err := enc.Encode(reports); err != nil {
		logger.Error("failed to write report", slog.Any("error", err))
		return 1
	}

	if failed > 0 {
		return 1
	}
	return 0
}
