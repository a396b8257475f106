package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/MarcoPoloResearchLab/shelf/backend/internal/catalog"
	"github.com/MarcoPoloResearchLab/shelf/backend/internal/config"
	"github.com/MarcoPoloResearchLab/shelf/backend/internal/logging"
	"github.com/MarcoPoloResearchLab/shelf/backend/internal/storeclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	rootCmd := newRootCommand(appDeps{
		openStore: openRemoteStore,
		newLogger: logging.NewConsoleLogger,
		stdin:     os.Stdin,
	})
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type appDeps struct {
	openStore func(cfg config.ClientConfig, logger *zap.Logger) (catalog.Store, error)
	newLogger func(level string) (*zap.Logger, error)
	stdin     io.Reader
}

type app struct {
	deps    appDeps
	viper   *viper.Viper
	cfgFile string
}

func newRootCommand(deps appDeps) *cobra.Command {
	application := &app{deps: deps, viper: config.NewViper()}

	rootCmd := &cobra.Command{
		Use:           "shelf",
		Short:         "Track the series you are reading",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return application.initConfig()
		},
	}

	application.setupFlags(rootCmd)
	rootCmd.AddCommand(
		application.newListCommand(),
		application.newAddCommand(),
		application.newEditCommand(),
		application.newDeleteCommand(),
		application.newNoteCommand(),
		application.newShowCommand(),
	)
	return rootCmd
}

func (a *app) setupFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "Path to configuration file")
	flags.String("store-url", a.viper.GetString("store.url"), "Store API base URL")
	flags.String("api-key", "", "Store API key (overrides env)")
	flags.Int("timeout-seconds", a.viper.GetInt("store.timeout_seconds"), "Store request timeout in seconds")
	flags.String("log-level", a.viper.GetString("log.level"), "Log level (debug, info, warn, error)")

	a.bindFlag(cmd, "store.url", "store-url")
	a.bindFlag(cmd, "store.api_key", "api-key")
	a.bindFlag(cmd, "store.timeout_seconds", "timeout-seconds")
	a.bindFlag(cmd, "log.level", "log-level")
}

func (a *app) bindFlag(cmd *cobra.Command, key, flag string) {
	if err := a.viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func (a *app) initConfig() error {
	if a.cfgFile != "" {
		a.viper.SetConfigFile(a.cfgFile)
	}

	if err := a.viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

// session is one command's view of the catalog: a synchronized controller plus its settings.
type session struct {
	controller *catalog.Controller
	config     config.ClientConfig
	logger     *zap.Logger
}

func (a *app) openSession(ctx context.Context, confirmer catalog.Confirmer) (*session, error) {
	clientConfig, err := config.LoadClient(a.viper)
	if err != nil {
		return nil, err
	}

	logger, err := a.deps.newLogger(clientConfig.LogLevel)
	if err != nil {
		return nil, err
	}

	store, err := a.deps.openStore(clientConfig, logger)
	if err != nil {
		return nil, err
	}

	controller, err := catalog.NewController(catalog.Config{
		Store:               store,
		Confirmer:           confirmer,
		Logger:              logger,
		DiscardStaleFetches: true,
	})
	if err != nil {
		return nil, err
	}

	current := &session{controller: controller, config: clientConfig, logger: logger}
	if err := controller.Fetch(ctx); err != nil {
		return nil, current.failure(err)
	}
	return current, nil
}

func (s *session) close() {
	_ = s.logger.Sync()
}

// failure carries the controller's user-facing message while keeping the cause for errors.Is.
type failure struct {
	message string
	err     error
}

func (f *failure) Error() string { return f.message }

func (f *failure) Unwrap() error { return f.err }

func (s *session) failure(err error) error {
	message := s.controller.ErrorMessage()
	if message == "" {
		return err
	}
	return &failure{message: message, err: err}
}

func openRemoteStore(cfg config.ClientConfig, logger *zap.Logger) (catalog.Store, error) {
	return storeclient.New(storeclient.Config{
		BaseURL: cfg.StoreURL,
		APIKey:  cfg.StoreAPIKey,
		Timeout: cfg.StoreTimeout,
		Logger:  logger,
	})
}
