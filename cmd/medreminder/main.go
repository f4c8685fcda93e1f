// Command medreminder is a terminal medication reminder: today's list,
// adherence ticks and caregiver notifications, stored in a local SQLite
// file.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nhle/medreminder/internal/app"
	"github.com/nhle/medreminder/internal/credential"
	"github.com/nhle/medreminder/internal/logging"
	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/notify"
	"github.com/nhle/medreminder/internal/reminder"
	"github.com/nhle/medreminder/internal/rollover"
	"github.com/nhle/medreminder/internal/store"
	"github.com/nhle/medreminder/internal/vision"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("medreminder", pflag.ContinueOnError)
	configPath := flags.String("config", model.DefaultConfigPath(), "path to the YAML config file")
	flags.String("db", "", "path to the SQLite database")
	flags.String("log-file", "", "path to the log file")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	setSecret := flags.String("set-secret", "", "store a secret read from stdin (claude-api-key, imap-password) and exit")
	deleteSecret := flags.String("delete-secret", "", "remove a stored secret and exit")
	printConfig := flags.Bool("print-config", false, "print the effective configuration and exit")
	initConfig := flags.Bool("init-config", false, "write the effective configuration to --config if it does not exist, then exit")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	v := model.NewViper(*configPath)
	for key, flag := range map[string]string{
		"database.path": "db",
		"log.file":      "log-file",
		"log.level":     "log-level",
	} {
		// Unset flags leave the config value and default in place.
		if f := flags.Lookup(flag); f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("binding --%s: %w", flag, err)
			}
		}
	}
	cfg, err := model.LoadConfigFrom(v)
	if err != nil {
		return err
	}
	if *printConfig {
		return model.DumpConfig(os.Stdout, cfg)
	}
	if *initConfig {
		if err := model.InitConfig(*configPath, cfg); err != nil {
			return err
		}
		fmt.Printf("Wrote %s.\n", *configPath)
		return nil
	}

	// A .env beside the config file may carry ANTHROPIC_API_KEY and
	// MEDREMINDER_IMAP_PASSWORD. Variables already set win.
	envFile := filepath.Join(filepath.Dir(*configPath), ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", envFile, err)
	}

	vault, err := credential.Open(model.DefaultConfigDir())
	if err != nil {
		return err
	}
	switch {
	case *setSecret != "":
		return storeSecret(vault, *setSecret, os.Stdin)
	case *deleteSecret != "":
		if err := vault.Delete(*deleteSecret); err != nil {
			return err
		}
		fmt.Printf("Removed %s.\n", *deleteSecret)
		return nil
	}

	logger, logFile, err := logging.OpenFile(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer logFile.Close()

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	notifier := notify.Multi{notify.NewOutboxNotifier(st, logger)}
	if cfg.Notify.Mail.Enabled {
		if mail := newMailNotifier(cfg.Notify.Mail, vault, logger); mail != nil {
			notifier = append(notifier, mail)
		}
	}
	dispatcher := notify.NewDispatcher(notifier, time.Duration(cfg.Notify.TimeoutSec)*time.Second, logger)

	svc := reminder.New(st, logger, reminder.WithDispatcher(dispatcher))
	watcher := rollover.New(logger)

	logger.Info("starting",
		"db", cfg.Database.Path,
		"contacts", len(cfg.Contacts),
		"mail", cfg.Notify.Mail.Enabled,
	)

	p := tea.NewProgram(
		app.New(svc, app.Options{
			Analyzer:        newAnalyzer(cfg.AI, vault, logger),
			AnalyzerTimeout: time.Duration(cfg.AI.TimeoutSec) * time.Second,
			Contacts:        cfg.Contacts,
			Watcher:         watcher,
			Logger:          logger,
		}),
		tea.WithAltScreen(),
	)

	_, runErr := p.Run()
	watcher.Stop()
	// Let in-flight caregiver notifications finish before the store closes.
	dispatcher.Wait()
	if runErr != nil {
		return fmt.Errorf("running TUI: %w", runErr)
	}
	return nil
}

// newAnalyzer returns the photo analyzer, or nil when it is disabled or no
// API key is available.
func newAnalyzer(cfg model.AIConfig, vault *credential.Vault, logger *slog.Logger) vision.Analyzer {
	if !cfg.Enabled {
		return nil
	}
	key, err := vault.Get(credential.KeyClaudeAPI)
	if err != nil {
		logger.Info("photo analysis off", "reason", err)
		return nil
	}
	return vision.NewClaudeAnalyzer(key, cfg.Model, cfg.MaxTokens)
}

func newMailNotifier(cfg model.MailConfig, vault *credential.Vault, logger *slog.Logger) notify.Notifier {
	password, err := vault.Get(credential.KeyMailPassword)
	if err != nil {
		logger.Warn("mail notifications off", "reason", err)
		return nil
	}
	return notify.NewMailNotifier(cfg, password, logger)
}

func storeSecret(vault *credential.Vault, name string, in io.Reader) error {
	switch name {
	case credential.KeyClaudeAPI, credential.KeyMailPassword:
	default:
		return fmt.Errorf("unknown secret %q", name)
	}

	fmt.Fprintf(os.Stderr, "Enter %s: ", name)
	value, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading secret: %w", err)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.New("empty secret")
	}
	if err := vault.Set(name, value); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "\nStored %s.\n", name)
	return nil
}
