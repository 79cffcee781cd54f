package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mycelian/mycelian-journal/client"
	"github.com/mycelian/mycelian-journal/internal/config"
	"github.com/mycelian/mycelian-journal/internal/localstate"
	"github.com/mycelian/mycelian-journal/internal/logger"
)

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// app carries what every sub-command needs once flags are parsed.
type app struct {
	configPath string
	baseURL    string
	debug      bool

	cfg *config.Config
	log zerolog.Logger
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "journalctl",
		Short:         "Read and write your journal timeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("base-url") {
				cfg.BaseURL = a.baseURL
			}
			if a.debug {
				cfg.Debug = true
				_ = os.Setenv("JOURNAL_DEBUG", "true")
			}
			lvl, err := cfg.Level()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logger.InitConsole(lvl)
			a.log.Debug().Str("base_url", cfg.BaseURL).Msg("configuration loaded")
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a TOML config file")
	rootCmd.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "Journal backend URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&a.debug, "debug", "d", false, "Enable verbose debug output")

	rootCmd.AddCommand(newLoginCmd(a))
	rootCmd.AddCommand(newLogoutCmd(a))
	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newAddCmd(a))
	rootCmd.AddCommand(newDeleteCmd(a))
	return rootCmd
}

func (a *app) openSessions() (*localstate.SessionStore, error) {
	return localstate.OpenSessionStore(a.cfg.StateDir)
}

// newClient builds a client that reads the session token from the local store
// on every request.
func (a *app) newClient(sessions *localstate.SessionStore) (*client.Client, error) {
	return client.New(a.cfg.BaseURL,
		client.WithCredentialSource(sessions),
		client.WithHTTPTimeout(a.cfg.HTTPTimeout),
		client.WithPageSize(a.cfg.PageSize),
		client.WithUploadConcurrency(a.cfg.UploadConcurrency),
		client.WithLogger(a.log),
	)
}

// withTimeline opens the session store and a client, hands a fresh Timeline to
// fn and closes everything afterwards.
func (a *app) withTimeline(fn func(*client.Timeline) error) error {
	sessions, err := a.openSessions()
	if err != nil {
		return err
	}
	defer func() { _ = sessions.Close() }()

	c, err := a.newClient(sessions)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()
	return fn(c.NewTimeline())
}
