package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/matheus3301/waharvest/internal/app"
	"github.com/matheus3301/waharvest/internal/config"
	"github.com/matheus3301/waharvest/internal/session"
	"github.com/spf13/cobra"
)

// globals are the persistent flags and what PersistentPreRunE resolves from them.
type globals struct {
	sessionFlag string
	configPath  string
	verbose     bool
	json        bool

	cfg     *config.Config
	cfgPath string
	session string
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "waharvest",
		Short: "Harvest and classify WhatsApp Web chats",
		Long: `waharvest reads the chat list of a logged-in WhatsApp Web session,
classifies every chat (type, sentiment, recency, priority) and optionally opens
the most recent threads to collect their messages and media.

Every run is archived per session and can be listed, shown and searched later.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return g.resolve()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&g.sessionFlag, "session", "", "session name (overrides config default)")
	flags.StringVar(&g.configPath, "config", "", "config file (default ~/.waharvest/config.toml)")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "debug logging on stderr")
	flags.BoolVar(&g.json, "json", false, "output in JSON format")

	root.AddCommand(
		newSummaryCmd(g),
		newThreadsCmd(g),
		newRunsCmd(g),
		newShowCmd(g),
		newSearchCmd(g),
		newDeleteCmd(g),
		newConfigCmd(g),
	)
	return root
}

// resolve loads .env files and configuration, applies the environment and
// picks the session.
func (g *globals) resolve() error {
	cwd, _ := os.Getwd()
	if err := config.LoadEnvFiles(filepath.Join(cwd, ".env"), session.EnvPath()); err != nil {
		return err
	}

	path := g.configPath
	if path == "" {
		path = session.ConfigPath()
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return err
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return err
	}

	name, err := session.Resolve(g.sessionFlag, cfg.DefaultSession)
	if err != nil {
		return err
	}
	g.cfg, g.cfgPath, g.session = cfg, path, name
	return nil
}

func (g *globals) params(cmd *cobra.Command) app.Params {
	return app.Params{
		SessionName: g.session,
		Config:      g.cfg,
		Verbose:     g.verbose,
		JSON:        g.json,
		Interactive: isTerminal(cmd.InOrStdin()),
		In:          cmd.InOrStdin(),
		Out:         cmd.OutOrStdout(),
		Err:         cmd.ErrOrStderr(),
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}
