package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Seednode/hitster/internal/deck"
	"github.com/Seednode/hitster/internal/session"
)

type Config struct {
	catalogPath string
	decade      int
	storageDir  string
	verbose     bool
	version     bool

	bind    string
	port    int
	prefix  string
	profile bool
	tlsCert string
	tlsKey  string

	code    string
	genres  string
	players int
	role    string

	qr bool

	log *zap.Logger
}

func (c *Config) validate() error {
	if c.decade != 0 && (c.decade%10 != 0 || c.decade < 1900) {
		return fmt.Errorf("invalid decade (must be a multiple of 10 from 1900 on): %d", c.decade)
	}
	if c.storageDir == "" {
		return errors.New("--storage-dir must not be empty")
	}
	return nil
}

func (c *Config) validateServe() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	c.prefix = strings.TrimSuffix(c.prefix, "/")
	return nil
}

func (c *Config) validatePlay() error {
	if _, err := session.ParseRole(c.role); err != nil {
		return err
	}
	if c.players < session.MinPlayers || c.players > session.MaxPlayers {
		return fmt.Errorf("invalid player count (must be between %d-%d inclusive): %d",
			session.MinPlayers, session.MaxPlayers, c.players)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// logger never returns nil, so commands built without the root pre-run
// (as in tests) still log somewhere.
func (c *Config) logger() *zap.Logger {
	if c.log == nil {
		return zap.NewNop()
	}
	return c.log
}

func (c *Config) sync() {
	if c.log != nil {
		_ = c.log.Sync()
	}
}

func defaultStorageDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "hitster")
}

// bindFlags lets HITSTER_* variables fill any flag not given on the command line.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("HITSTER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "hitster",
		Short:         "Guess-the-year music game with a synchronized game screen and DJ view.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			cfg.log = newLogger(cfg.verbose, os.Stderr)
			return nil
		},
	}

	pfs := cmd.PersistentFlags()
	pfs.StringVar(&cfg.catalogPath, "catalog", "", "path to a JSON song catalog, instead of the built-in one (env: HITSTER_CATALOG)")
	pfs.IntVar(&cfg.decade, "decade", 0, "only deal songs released in this decade, e.g. 1980 (env: HITSTER_DECADE)")
	pfs.StringVar(&cfg.storageDir, "storage-dir", defaultStorageDir(), "directory holding session state shared between local processes (env: HITSTER_STORAGE_DIR)")
	pfs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: HITSTER_VERBOSE)")
	bindFlags(v, pfs)

	fs := cmd.Flags()
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: HITSTER_VERSION)")
	bindFlags(v, fs)

	cmd.AddCommand(
		newServeCmd(cfg, v),
		newPlayCmd(cfg, v),
		newDeckCmd(cfg, v),
		newCodeCmd(cfg, v),
	)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("hitster v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func newServeCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host the browser game screen and DJ view on this machine.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validateServe(); err != nil {
				return err
			}

			b, err := newBackend(cfg)
			if err != nil {
				return err
			}

			return ServePage(cmd.Context(), cfg, b)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&cfg.bind, "bind", "b", "127.0.0.1", "address to bind to (env: HITSTER_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: HITSTER_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: HITSTER_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: HITSTER_PROFILE)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: HITSTER_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: HITSTER_TLS_KEY)")
	bindFlags(v, fs)

	return cmd
}

func newPlayCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Run a game screen or DJ view in the terminal.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validatePlay(); err != nil {
				return err
			}

			b, err := newBackend(cfg)
			if err != nil {
				return err
			}

			return runPlay(cmd.Context(), cfg, b, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&cfg.role, "role", string(session.RoleGame), "screen to drive: game or dj (env: HITSTER_ROLE)")
	fs.StringVar(&cfg.code, "code", "", "shared session code; a new one is generated when empty (env: HITSTER_CODE)")
	fs.StringVar(&cfg.genres, "genres", "", "comma-separated genres to deal from; empty means all (env: HITSTER_GENRES)")
	fs.IntVar(&cfg.players, "players", session.DefaultPlayers, "number of players taking turns (env: HITSTER_PLAYERS)")
	bindFlags(v, fs)

	return cmd
}

func newDeckCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Print the deck a code and genre selection deal, in order.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.code == "" {
				return errors.New("--code is required")
			}

			cat, err := loadCatalog(cfg)
			if err != nil {
				return err
			}

			return printDeck(cmd.OutOrStdout(), deck.Build(cfg.code, deck.ParseGenres(cfg.genres), cat))
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&cfg.code, "code", "", "shared session code (env: HITSTER_CODE)")
	fs.StringVar(&cfg.genres, "genres", "", "comma-separated genres to deal from; empty means all (env: HITSTER_GENRES)")
	bindFlags(v, fs)

	return cmd
}

func newCodeCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "code",
		Short: "Generate a new session code.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printCode(cmd.OutOrStdout(), cfg.genres, cfg.qr)
		},
	}

	fs := cmd.Flags()
	fs.BoolVar(&cfg.qr, "qr", false, "also print the code as a QR code (env: HITSTER_QR)")
	fs.StringVar(&cfg.genres, "genres", "", "genres to include in the QR code (env: HITSTER_GENRES)")
	bindFlags(v, fs)

	return cmd
}
