package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"orders_console/internal/api"
	"orders_console/internal/config"
	"orders_console/internal/orders"
	"orders_console/internal/session"
	"orders_console/internal/tui"

	"go.uber.org/zap"
)

const programName = "orders-console"

var ErrUnknownCommand = errors.New("unknown command")

type Runner struct {
	cfg      config.Config
	options  Options
	logger   *zap.Logger
	sessions *session.Manager
	client   *api.Client
	loader   *orders.Loader

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func NewRunner(cfg config.Config, logger *zap.Logger, sessions *session.Manager, client *api.Client, loader *orders.Loader) *Runner {
	opts := Options{
		APIBaseURL:  cfg.APIBaseURL,
		SessionFile: cfg.SessionFile,
		Timeout:     cfg.Timeout,
		PageSize:    cfg.PageSize,
		Path:        tui.PathRoot,
	}

	return &Runner{
		cfg:      cfg,
		options:  opts,
		logger:   logger.Named("cli"),
		sessions: sessions,
		client:   client,
		loader:   loader,
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
}

func (r *Runner) Execute() error {
	return r.run(os.Args[1:])
}

func (r *Runner) run(argv []string) error {
	opts := r.options
	var timeoutSeconds int

	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(r.stderr)
	fs.Usage = func() {
		fmt.Fprintf(r.stderr, "Usage: %s [flags] [command] [command flags]\n\n", fs.Name())
		fmt.Fprintln(r.stderr, "Without a command the interactive console starts.")
		fmt.Fprintln(r.stderr, "\nCommands:")
		fmt.Fprintln(r.stderr, "  login -u USER [-p PASS]                     sign in (password read from stdin when omitted)")
		fmt.Fprintln(r.stderr, "  logout                                      sign out")
		fmt.Fprintln(r.stderr, "  whoami                                      show the signed-in user")
		fmt.Fprintln(r.stderr, "  clients [list]                              list clients")
		fmt.Fprintln(r.stderr, "  clients show ID                             show one client")
		fmt.Fprintln(r.stderr, "  clients create --name --code --city         create a client")
		fmt.Fprintln(r.stderr, "  clients update ID [--name --code --city]    update a client")
		fmt.Fprintln(r.stderr, "  clients delete ID                           delete a client")
		fmt.Fprintln(r.stderr, "  orders [list] [--page --size --client --expedition --payment --status --min --max]")
		fmt.Fprintln(r.stderr, "  orders show ID                              show one order")
		fmt.Fprintln(r.stderr, "  orders create --client --product --quantity --price [--date --type --payment --expedition --status]")
		fmt.Fprintln(r.stderr, "  orders update ID [same flags as create]     update an order")
		fmt.Fprintln(r.stderr, "  orders delete ID                            delete an order")
		fmt.Fprintln(r.stderr, "\nFlags:")
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.APIBaseURL, "api-base-url", opts.APIBaseURL, "Orders API base URL (API_BASE_URL)")
	fs.StringVar(&opts.SessionFile, "session-file", opts.SessionFile, "Session file path (SESSION_FILE)")
	fs.IntVar(&timeoutSeconds, "timeout", int(opts.Timeout.Seconds()), "Timeout in seconds")
	fs.StringVar(&opts.Path, "path", opts.Path, "Route opened by the interactive console")
	fs.BoolVar(&opts.JSON, "json", false, "Output JSON format")

	if err := fs.Parse(argv); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if timeoutSeconds > 0 {
		opts.Timeout = time.Duration(timeoutSeconds) * time.Second
	}
	opts.APIBaseURL = strings.TrimRight(strings.TrimSpace(opts.APIBaseURL), "/")
	opts.SessionFile = config.ExpandHome(opts.SessionFile)

	r.rebuild(opts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	args := fs.Args()
	if len(args) == 0 {
		return r.runInteractive(ctx, &opts)
	}
	return r.runCommand(ctx, &opts, args[0], args[1:])
}

// rebuild replaces the injected clients when flags point somewhere else
// than the loaded configuration.
func (r *Runner) rebuild(opts Options) {
	if opts.SessionFile != r.cfg.SessionFile || r.sessions == nil {
		r.sessions = session.NewManager(session.NewFileStore(opts.SessionFile), r.logger)
		r.client = nil
	}
	if opts.APIBaseURL != r.cfg.APIBaseURL || opts.Timeout != r.cfg.Timeout || r.client == nil {
		cfg := r.cfg
		cfg.APIBaseURL = opts.APIBaseURL
		cfg.Timeout = opts.Timeout
		r.client = api.NewClient(cfg, r.sessions, r.logger)
		r.loader = nil
	}
	if r.loader == nil {
		r.loader = orders.NewLoader(r.client, r.logger)
	}
}

func (r *Runner) runInteractive(ctx context.Context, opts *Options) error {
	r.logger.Info("interactive console",
		zap.String("api_base_url", opts.APIBaseURL),
		zap.String("path", opts.Path),
	)
	app := tui.NewApp(ctx, r.client, r.sessions, r.loader, tui.Options{
		Path:     opts.Path,
		PageSize: opts.PageSize,
	}, r.logger)
	return tui.Run(ctx, app, r.logger)
}

func (r *Runner) runCommand(ctx context.Context, opts *Options, name string, args []string) error {
	r.logger.Info("command",
		zap.String("name", name),
		zap.Strings("args", redactArgs(args)),
		zap.Bool("json", opts.JSON),
	)

	switch name {
	case "login":
		return r.login(ctx, opts, args)
	case "logout":
		return r.logout(ctx, opts)
	case "whoami":
		return r.whoami(ctx, opts)
	case "clients":
		return r.clients(ctx, opts, args)
	case "orders":
		return r.orders(ctx, opts, args)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
}

// requireSession fails one-shot commands early when nobody is signed in.
func (r *Runner) requireSession() (session.Session, error) {
	sess, err := r.sessions.Load()
	if err != nil {
		return sess, err
	}
	if !sess.Authenticated {
		return sess, ErrNotAuthenticated
	}
	return sess, nil
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(programName+" "+name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func redactArgs(args []string) []string {
	out := make([]string, len(args))
	redact := false
	for i, a := range args {
		switch {
		case redact:
			out[i] = "***"
			redact = false
		case a == "-p" || a == "--p" || a == "-password" || a == "--password":
			out[i] = a
			redact = true
		case strings.HasPrefix(a, "-p=") || strings.HasPrefix(a, "--p=") || strings.HasPrefix(a, "-password=") || strings.HasPrefix(a, "--password="):
			name, _, _ := strings.Cut(a, "=")
			out[i] = name + "=***"
		default:
			out[i] = a
		}
	}
	return out
}
