// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command htaccess prints or installs the Apache rewrite rules that send
// requests for missing image sizes to the mediagate proxy.
//
// Defaults come from the same environment as the server (UPLOADS_DIR,
// PROXY_PREFIX, optionally PROXY_ORIGIN).
//
//	htaccess                          print the rule block
//	htaccess -file .htaccess          print .htaccess with the block merged in
//	htaccess -file .htaccess -write   merge in place
//	htaccess -file .htaccess -remove  print .htaccess without the block
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/taibuivan/mediagate/internal/core/rewrite"
	"github.com/taibuivan/mediagate/internal/platform/logging"
)

// settings is the subset of the server configuration the rules depend on.
type settings struct {
	UploadsDir  string `env:"UPLOADS_DIR"  envDefault:"wp-content/uploads"`
	ProxyPrefix string `env:"PROXY_PREFIX" envDefault:"/wp-content/plugins/mediagate/proxy"`
	// ProxyOrigin is set when the proxy runs on another host than Apache,
	// for example http://127.0.0.1:8080.
	ProxyOrigin string `env:"PROXY_ORIGIN"`
}

func main() {
	_ = godotenv.Load()
	log := logging.New(os.Stderr, "info")

	var cfg settings
	if err := env.Parse(&cfg); err != nil {
		log.Error("config_parse_failed", slog.Any("error", err))
		os.Exit(1)
	}

	var (
		file    = flag.String("file", "", "existing rules file to merge into")
		write   = flag.Bool("write", false, "rewrite -file in place instead of printing")
		remove  = flag.Bool("remove", false, "remove the block instead of adding it")
		uploads = flag.String("uploads", cfg.UploadsDir, "uploads directory relative to the site root")
		target  = flag.String("target", strings.TrimRight(cfg.ProxyOrigin, "/")+cfg.ProxyPrefix, "proxy path or URL")
	)
	flag.Parse()

	if err := run(*file, *write, *remove, *uploads, *target); err != nil {
		log.Error("htaccess_failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(file string, write, remove bool, uploads, target string) error {
	block := rewrite.Block(uploads, target)

	if file == "" {
		if remove || write {
			return fmt.Errorf("-remove and -write need -file")
		}
		_, err := fmt.Println(strings.Join(block, "\n"))
		return err
	}

	mode := fs.FileMode(0o644)
	existing, err := os.ReadFile(file)
	switch {
	case err == nil:
		if info, statErr := os.Stat(file); statErr == nil {
			mode = info.Mode().Perm()
		}
	case os.IsNotExist(err) && !remove:
	default:
		return fmt.Errorf("read %s: %w", file, err)
	}

	var rules string
	if remove {
		rules = rewrite.Remove(string(existing))
	} else {
		rules = rewrite.Merge(string(existing), block)
	}
	rules += "\n"

	if !write {
		_, err := fmt.Print(rules)
		return err
	}
	if err := os.WriteFile(file, []byte(rules), mode); err != nil {
		return fmt.Errorf("write %s: %w", file, err)
	}
	return nil
}
