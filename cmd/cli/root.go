package main

import (
	"context"
	"fmt"
	"io"
	"net"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/and161185/factshare/internal/client/controller"
	"github.com/and161185/factshare/internal/client/probe"
	"github.com/and161185/factshare/internal/config"
	"github.com/and161185/factshare/internal/platform/grpcclient"
)

// noSetup marks commands that run without a server connection.
const noSetup = "no-setup"

// app holds everything a command needs. It is built lazily by the root
// command's pre-run and shared by every command executed from the shell.
type app struct {
	v      *viper.Viper
	cfg    config.Config
	log    *zap.Logger
	client *grpcclient.Client
	ctl    *controller.Controller

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	inShell bool
	// dialer and tokens replace the network and the token file in tests.
	dialer func(ctx context.Context, addr string) (net.Conn, error)
	tokens grpcclient.TokenStore
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{v: config.New(), in: in, out: out, errOut: errOut}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "facts",
		Short:         "Share short facts with everyone on a factshare server",
		Version:       fmt.Sprintf("%s (%s)", version, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[noSetup] != "" || a.ctl != nil {
				return nil
			}
			return a.setup(cmd.Context())
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	pf := root.PersistentFlags()
	pf.String(config.KeyConfig, "", "config file (default <config-dir>/config.yaml)")
	pf.String("addr", "", "server address")
	pf.String("cacert", "", "CA certificate (PEM) for the server")
	pf.Bool("insecure", false, "skip TLS certificate verification (dev)")
	pf.Bool("plaintext", false, "connect without TLS (dev)")
	pf.String("config-dir", "", "directory holding config.yaml and the session token")
	pf.Duration("timeout", 0, "per-request timeout")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	for key, flag := range map[string]string{
		config.KeyConfig:         config.KeyConfig,
		config.KeyAddr:           "addr",
		config.KeyCACert:         "cacert",
		config.KeyInsecure:       "insecure",
		config.KeyPlaintext:      "plaintext",
		config.KeyConfigDir:      "config-dir",
		config.KeyRequestTimeout: "timeout",
		config.KeyLogLevel:       "log-level",
	} {
		_ = a.v.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(
		newVersionCmd(),
		newSignupCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newListCmd(a),
		newPostCmd(a),
		newEditCmd(a),
		newRmCmd(a),
		newStatusCmd(a),
		newShellCmd(a),
	)
	return root
}

// setup resolves configuration, connects and restores the saved session.
func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	log, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	tokens := a.tokens
	if tokens == nil {
		tokens = grpcclient.NewFileTokenStore(cfg.ConfigDir)
	}
	client, err := grpcclient.Dial(grpcclient.Options{
		Addr:       cfg.Addr,
		CACert:     cfg.CACert,
		SkipVerify: cfg.Insecure,
		Plaintext:  cfg.Plaintext,
		Tokens:     tokens,
		Logger:     log.Named("grpc"),
		Dialer:     a.dialer,
	})
	if err != nil {
		return fmt.Errorf("connect %s: %w", cfg.Addr, err)
	}

	a.cfg, a.log, a.client = cfg, log, client
	a.ctl = controller.New(client, client, client, controller.Options{
		Logger:         log,
		ProbeAttempts:  cfg.ProbeAttempts,
		ProbeBackoff:   probe.Exponential(cfg.ProbeBaseDelay, cfg.ProbeMaxDelay),
		AttemptTimeout: cfg.ProbeAttemptTimeout,
		ErrorTTL:       cfg.ErrorTTL,
	})

	// the background probe lives as long as ctx; it bounds its own attempts
	a.ctl.Start(ctx)
	return nil
}

// reqCtx bounds a single user action by the configured request timeout.
func (a *app) reqCtx(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, a.cfg.RequestTimeout)
}

func (a *app) close() {
	if a.ctl != nil {
		a.ctl.Close()
	}
	if a.client != nil {
		_ = a.client.Close()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}
