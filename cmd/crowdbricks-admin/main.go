package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/crowdbricks/admin-console/internal/api"
	"github.com/crowdbricks/admin-console/internal/app"
	"github.com/crowdbricks/admin-console/internal/credential"
	"github.com/crowdbricks/admin-console/internal/localdata"
	"github.com/crowdbricks/admin-console/internal/model"
	"github.com/crowdbricks/admin-console/internal/store"
)

func main() {
	configPath := flag.String("config", model.DefaultConfigPath(),
		"path to the configuration file")
	dataPath := flag.String("data", model.DefaultDataPath(),
		"path to the local database")
	flag.Parse()

	if err := run(*configPath, *dataPath); err != nil {
		fmt.Fprintf(os.Stderr, "crowdbricks-admin: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, dataPath string) error {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg, configPath)
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := os.MkdirAll(filepath.Dir(dataPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	kv, err := localdata.Open(dataPath)
	if err != nil {
		return err
	}
	defer kv.Close()

	notifications := store.NewNotificationStore(kv, log)
	notifications.Load()

	audit := store.NewAuditLog(kv, log)
	audit.Load()

	client := newClient(cfg, log)

	m := app.New(cfg, configPath, notifications, audit, client, log)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}

// newClient builds the backend client when a base URL and token are
// available. The token comes from the environment when set, otherwise
// from the system keyring. A nil return puts the app into first-run
// setup.
func newClient(cfg *model.AppConfig, log *zap.Logger) *api.Client {
	if cfg.API.BaseURL == "" {
		return nil
	}

	token := os.Getenv("CROWDBRICKS_API_TOKEN")
	if token == "" {
		var err error
		token, err = credential.Get(credential.KeyAPIToken)
		if err != nil || token == "" {
			log.Debug("no stored API token", zap.Error(err))
			return nil
		}
	}

	return api.NewClient(cfg.API.BaseURL, token)
}

// newLogger builds a file-backed logger. The UI owns the terminal, so
// logging never goes to stdout or stderr.
func newLogger(cfg *model.AppConfig, configPath string) (*zap.Logger, error) {
	logFile := cfg.LogFile
	if logFile == "" {
		logFile = filepath.Join(filepath.Dir(configPath), "admin.log")
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{logFile}
	zcfg.ErrorOutputPaths = []string{logFile}

	log, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return log, nil
}
