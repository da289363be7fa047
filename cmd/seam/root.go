// ABOUTME: Root Cobra command and shared wiring for the seam CLI.
// ABOUTME: Loads config, initializes logging, opens the state store, and builds the X broker.
package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/2389-research/seam/internal/config"
	"github.com/2389-research/seam/internal/logging"
	"github.com/2389-research/seam/internal/oauth"
	"github.com/2389-research/seam/internal/publish"
	"github.com/2389-research/seam/internal/session"
	"github.com/2389-research/seam/internal/storage"
)

var globalConfig *config.Config
var globalSession *session.Session
var globalBroker *oauth.Broker

var errNotConfigured = errors.New("X app credentials are not configured - run 'seam setup' first")

var rootCmd = &cobra.Command{
	Use:   "seam",
	Short: "Turn long text into an X thread and post it",
	Long: `
███████╗███████╗ █████╗ ███╗   ███╗
██╔════╝██╔════╝██╔══██╗████╗ ████║
███████╗█████╗  ███████║██╔████╔██║
╚════██║██╔══╝  ██╔══██║██║╚██╔╝██║
███████║███████╗██║  ██║██║ ╚═╝ ██║
╚══════╝╚══════╝╚═╝  ╚═╝╚═╝     ╚═╝

Capture text, split it into a thread, edit it, and post it to X
as a reply chain. Local-first: state lives on this machine.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "setup" {
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		globalConfig = cfg

		opts := logging.FromEnv()
		if opts.Level == "" {
			opts.Level = cfg.Log.Level
		}
		if opts.Format == "" {
			opts.Format = cfg.Log.Format
		}
		logging.Init(opts)

		sess, broker, err := openSession(cfg, newBroker)
		if err != nil {
			return err
		}
		globalSession = sess
		globalBroker = broker

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if globalSession != nil {
			_ = globalSession.Close()
			globalSession = nil
		}
		return nil
	},
}

// openSession opens the state store and, when consumer credentials are set,
// builds the broker. The store is closed again if anything after opening fails,
// since cobra skips PersistentPostRunE when PersistentPreRunE errors.
func openSession(cfg *config.Config, build func(*config.Config, *session.Session) (*oauth.Broker, error)) (*session.Session, *oauth.Broker, error) {
	store, err := storage.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open state store: %w", err)
	}
	sess, err := session.New(store)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	if !cfg.HasConsumer() {
		return sess, nil, nil
	}
	broker, err := build(cfg, sess)
	if err != nil {
		_ = sess.Close()
		return nil, nil, err
	}
	return sess, broker, nil
}

func newBroker(cfg *config.Config, sess *session.Session) (*oauth.Broker, error) {
	x := cfg.Endpoints()
	return oauth.NewBroker(
		oauth.NewSigner(x.ConsumerKey, x.ConsumerSecret),
		oauth.Endpoints{
			RequestTokenURL: x.RequestTokenURL,
			AuthorizeURL:    x.AuthorizeURL,
			AccessTokenURL:  x.AccessTokenURL,
			CallbackURL:     x.CallbackURL,
		},
		sess,
		oauth.WithLogger(logging.Named("oauth")),
	)
}

func requireBroker() (*oauth.Broker, error) {
	if globalBroker == nil {
		return nil, errNotConfigured
	}
	return globalBroker, nil
}

func newPublisher(cfg *config.Config, broker *oauth.Broker) *publish.Publisher {
	log := logging.Named("publish")
	client := publish.NewClient(cfg.Endpoints().APIURL, broker, publish.WithClientLogger(log))
	return publish.NewPublisher(client, publish.WithLogger(log))
}
