package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/comigor/notesai/internal/aiclient"
	"github.com/comigor/notesai/internal/config"
	"github.com/comigor/notesai/internal/logger"
)

var version = "dev"

// app is the state shared by every command once the root pre-run has loaded it.
type app struct {
	v          *viper.Viper
	configPath string

	cfg    *config.Config
	client *aiclient.Client
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "notesai",
		Short:         "Command-line client for the notes AI assistant",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default: $CONFIG_PATH or ./notesai.yaml)")
	pf.String("base-url", "", "backend base URL")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.Duration("timeout", 0, "request timeout")

	for key, flag := range map[string]string{
		"base_url":  "base-url",
		"log_level": "log-level",
		"timeout":   "timeout",
	} {
		if err := a.v.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	root.AddCommand(
		newChatCmd(a),
		newAnalyzeCmd(a),
		newAnalyzeNoteCmd(a),
		newStreamCmd(a),
		newStatusCmd(a),
		newPingCmd(a),
		newSessionCmd(a),
		newHistoryCmd(a),
		newSelftestCmd(a),
		newMCPCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.LoadFrom(a.v, a.configPath)
	if err != nil {
		return err
	}
	logger.Configure(cmd.ErrOrStderr(), cfg.LogFormat, cfg.LogLevel)

	client, err := aiclient.New(cfg.Client())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.client = client
	logger.L.Debug("configuration loaded", "baseURL", cfg.BaseURL, "timeout", cfg.Timeout)
	return nil
}

// readInput returns the content of path, or stdin when path is "" or "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("error opening %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("error reading input: %w", err)
	}
	return string(b), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", strings.TrimSpace(err.Error()))
		stop()
		os.Exit(1)
	}
}
