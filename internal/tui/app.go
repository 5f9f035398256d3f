package tui

import (
	"context"

	"orders_console/internal/orders"
	"orders_console/internal/session"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

const (
	PathRoot   = "/"
	PathOrders = "/orders"
	PathLogin  = "/login"
)

var (
	redirects = map[string]string{
		PathRoot:  PathOrders,
		PathLogin: PathRoot,
	}
	screens = map[string]bool{
		PathOrders: true,
	}
)

// Resolve follows redirects from path to a screen of the authenticated
// router. Unknown paths fall back to the root.
func Resolve(path string) string {
	for range len(redirects) + 2 {
		if screens[path] {
			return path
		}
		next, ok := redirects[path]
		if !ok {
			next = PathRoot
		}
		path = next
	}
	return PathOrders
}

type gate int

const (
	gateLoading gate = iota
	gateAnonymous
	gateAuthenticated
)

type sessionLoadedMsg struct {
	session session.Session
	err     error
}

type sessionChangedMsg struct {
	session session.Session
}

type Options struct {
	// Path is the route requested at start.
	Path     string
	PageSize int
}

// App is the route gate. It owns the login and order list screens and
// switches between them on every session transition.
type App struct {
	ctx      context.Context
	auth     Authenticator
	sessions *session.Manager
	loader   *orders.Loader
	logger   *zap.Logger
	keys     KeyMap
	opts     Options

	changes     <-chan session.Session
	unsubscribe func()

	gate     gate
	resolved bool
	path     string
	user     session.User

	login  loginModel
	orders ordersModel

	width  int
	height int
}

func NewApp(ctx context.Context, auth Authenticator, sessions *session.Manager, loader *orders.Loader, opts Options, logger *zap.Logger) *App {
	logger = logger.Named("tui")
	if opts.Path == "" {
		opts.Path = PathRoot
	}
	changes, unsubscribe := sessions.Subscribe()
	return &App{
		ctx:         ctx,
		auth:        auth,
		sessions:    sessions,
		loader:      loader,
		logger:      logger,
		keys:        DefaultKeyMap,
		opts:        opts,
		changes:     changes,
		unsubscribe: unsubscribe,
		path:        opts.Path,
	}
}

// Close stops listening for session transitions.
func (a *App) Close() {
	a.unsubscribe()
}

func (a *App) Path() string {
	return a.path
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(loadSession(a.sessions), listenForSession(a.changes))
}

func loadSession(sessions *session.Manager) tea.Cmd {
	return func() tea.Msg {
		sess, err := sessions.Load()
		return sessionLoadedMsg{session: sess, err: err}
	}
}

// listenForSession blocks until the next session transition.
func listenForSession(changes <-chan session.Session) tea.Cmd {
	return func() tea.Msg {
		sess, ok := <-changes
		if !ok {
			return nil
		}
		return sessionChangedMsg{session: sess}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil

	case sessionLoadedMsg:
		if a.resolved {
			return a, nil
		}
		if msg.err != nil {
			a.logger.Warn("load session", zap.Error(msg.err))
		}
		return a, a.apply(msg.session)

	case sessionChangedMsg:
		cmd := a.apply(msg.session)
		return a, tea.Batch(cmd, listenForSession(a.changes))

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.ForceQuit) {
			return a, tea.Quit
		}
		if a.gate == gateAuthenticated && a.orders.editing == amountNone && key.Matches(msg, a.keys.Quit) {
			return a, tea.Quit
		}
	}

	var cmd tea.Cmd
	switch a.gate {
	case gateAnonymous:
		a.login, cmd = a.login.Update(msg)
	case gateAuthenticated:
		a.orders, cmd = a.orders.Update(msg)
	}
	return a, cmd
}

// apply moves the gate to match sess. Authenticating mounts the router at
// the requested path; losing the session shows the login screen.
func (a *App) apply(sess session.Session) tea.Cmd {
	a.resolved = true

	if !sess.Authenticated || sess.User == nil {
		if a.gate != gateAnonymous {
			a.logger.Info("showing login")
			a.login = newLoginModel(a.ctx, a.auth, a.sessions, a.logger)
		}
		a.gate = gateAnonymous
		a.path = PathLogin
		return nil
	}

	if a.gate == gateAuthenticated && a.user == *sess.User {
		return nil
	}
	a.gate = gateAuthenticated
	a.user = *sess.User
	return a.navigate(a.opts.Path)
}

// navigate resolves path and mounts its screen. After the first mount the
// requested path is forgotten, so re-authenticating lands on the root.
func (a *App) navigate(path string) tea.Cmd {
	a.path = Resolve(path)
	a.opts.Path = PathRoot
	a.logger.Info("navigate", zap.String("requested", path), zap.String("path", a.path))

	a.orders = newOrdersModel(a.ctx, a.loader, a.auth, a.sessions, a.user, a.opts.PageSize, a.logger)
	return a.orders.Init()
}

func (a *App) View() string {
	switch a.gate {
	case gateLoading:
		return mutedStyle.Render(msgLoading)
	case gateAnonymous:
		return a.login.View()
	default:
		return a.orders.View()
	}
}
