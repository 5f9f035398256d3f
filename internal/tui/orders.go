package tui

import (
	"context"
	"fmt"
	"strings"

	"orders_console/internal/api"
	"orders_console/internal/orders"
	"orders_console/internal/session"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

const msgLoading = "Chargement..."

type clientsLoadedMsg struct {
	clients []api.ClientRecord
	err     error
}

type ordersLoadedMsg struct {
	page orders.Page
}

type logoutDoneMsg struct {
	err error
}

type amountField int

const (
	amountNone amountField = iota
	amountMin
	amountMax
)

type column struct {
	title string
	width int
}

var columns = []column{
	{"REFERENCE", 12},
	{"DATE", 10},
	{"CLIENT", 22},
	{"TYPE", 6},
	{"MOYEN DE PAIEMENT", 18},
	{"EXPEDITION", 11},
	{"MONTANT", 14},
	{"STATUS", 14},
}

type ordersModel struct {
	ctx      context.Context
	loader   *orders.Loader
	auth     Authenticator
	sessions *session.Manager
	logger   *zap.Logger
	keys     KeyMap
	user     session.User

	clients    []api.ClientRecord
	pagination orders.Pagination
	filter     orders.Filter

	rows    []orders.Row
	total   int64
	loading bool
	notice  string

	editing     amountField
	amountInput textinput.Model
}

func newOrdersModel(ctx context.Context, loader *orders.Loader, auth Authenticator, sessions *session.Manager, user session.User, pageSize int, logger *zap.Logger) ordersModel {
	input := newInput("", "0,00")
	input.CharLimit = 16
	input.Width = 12
	return ordersModel{
		ctx:         ctx,
		loader:      loader,
		auth:        auth,
		sessions:    sessions,
		logger:      logger,
		keys:        DefaultKeyMap,
		user:        user,
		clients:     []api.ClientRecord{},
		pagination:  orders.NewPagination(pageSize),
		rows:        []orders.Row{},
		amountInput: input,
	}
}

// Init fetches the client list and the first page. The two requests are
// independent of each other.
func (m *ordersModel) Init() tea.Cmd {
	return tea.Batch(m.fetchClients(), m.fetch())
}

func (m *ordersModel) fetchClients() tea.Cmd {
	ctx, loader := m.ctx, m.loader
	return func() tea.Msg {
		clients, err := loader.Clients(ctx)
		return clientsLoadedMsg{clients: clients, err: err}
	}
}

// fetch starts a request for the current state. It takes a new sequence
// number, so any request still in flight becomes stale.
func (m *ordersModel) fetch() tea.Cmd {
	seq := m.loader.Begin()
	m.loading = true
	ctx, loader, p, f := m.ctx, m.loader, m.pagination, m.filter
	return func() tea.Msg {
		return ordersLoadedMsg{page: loader.Fetch(ctx, seq, p, f)}
	}
}

func (m ordersModel) Update(msg tea.Msg) (ordersModel, tea.Cmd) {
	switch msg := msg.(type) {
	case clientsLoadedMsg:
		m.clients = msg.clients
		return m, nil

	case ordersLoadedMsg:
		if !m.loader.IsLatest(msg.page.Seq) {
			m.logger.Debug("discarding stale order page", zap.Uint64("seq", msg.page.Seq))
			return m, nil
		}
		m.loading = false
		m.rows = msg.page.Rows
		m.total = msg.page.Total
		m.notice = msg.page.Notice()
		return m, nil

	case logoutDoneMsg:
		if msg.err != nil {
			m.logger.Warn("logout", zap.Error(msg.err))
		}
		return m, nil

	case tea.KeyMsg:
		if m.editing != amountNone {
			return m.updateAmount(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m ordersModel) handleKey(msg tea.KeyMsg) (ordersModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NextPage):
		if next, ok := m.pagination.Next(m.total); ok {
			m.pagination = next
			return m.refetch()
		}
	case key.Matches(msg, m.keys.PrevPage):
		if prev, ok := m.pagination.Prev(); ok {
			m.pagination = prev
			return m.refetch()
		}
	case key.Matches(msg, m.keys.PageSize):
		m.pagination = m.pagination.CycleSize()
		return m.refetch()
	case key.Matches(msg, m.keys.Client):
		m.filter.ClientID = orders.CycleOption(m.clientIDs(), m.filter.ClientID)
		return m.filterChanged()
	case key.Matches(msg, m.keys.Expedition):
		m.filter.Expedition = orders.CycleOption(orders.Expeditions, m.filter.Expedition)
		return m.filterChanged()
	case key.Matches(msg, m.keys.Payment):
		m.filter.PaymentMethod = orders.CycleOption(orders.PaymentMethods, m.filter.PaymentMethod)
		return m.filterChanged()
	case key.Matches(msg, m.keys.Status):
		m.filter.Status = orders.CycleOption(orders.Statuses, m.filter.Status)
		return m.filterChanged()
	case key.Matches(msg, m.keys.MinAmount):
		return m.editAmount(amountMin, m.filter.MinAmount)
	case key.Matches(msg, m.keys.MaxAmount):
		return m.editAmount(amountMax, m.filter.MaxAmount)
	case key.Matches(msg, m.keys.ClearFilters):
		if m.filter.IsZero() {
			return m, nil
		}
		m.filter = orders.Filter{}
		return m.filterChanged()
	case key.Matches(msg, m.keys.Refresh):
		return m.refetch()
	case key.Matches(msg, m.keys.Logout):
		return m, logout(m.ctx, m.auth, m.sessions)
	}
	return m, nil
}

func (m ordersModel) filterChanged() (ordersModel, tea.Cmd) {
	m.pagination.Page = 0
	return m.refetch()
}

func (m ordersModel) refetch() (ordersModel, tea.Cmd) {
	cmd := m.fetch()
	return m, cmd
}

func (m ordersModel) clientIDs() []string {
	ids := make([]string, 0, len(m.clients))
	for _, c := range m.clients {
		if id := c.ID.String(); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func (m ordersModel) clientName(id string) string {
	for _, c := range m.clients {
		if c.ID.String() == id {
			return c.Name
		}
	}
	return id
}

func (m ordersModel) editAmount(field amountField, current string) (ordersModel, tea.Cmd) {
	m.editing = field
	m.amountInput.SetValue(current)
	m.amountInput.CursorEnd()
	m.amountInput.Focus()
	return m, nil
}

func (m ordersModel) updateAmount(msg tea.KeyMsg) (ordersModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.editing = amountNone
		m.amountInput.Blur()
		return m, nil
	case key.Matches(msg, m.keys.ConfirmAmount):
		value := strings.TrimSpace(m.amountInput.Value())
		if m.editing == amountMin {
			m.filter.MinAmount = value
		} else {
			m.filter.MaxAmount = value
		}
		m.editing = amountNone
		m.amountInput.Blur()
		return m.filterChanged()
	}

	var cmd tea.Cmd
	m.amountInput, cmd = m.amountInput.Update(msg)
	return m, cmd
}

// logout is best-effort: the server call may fail, the local session is
// cleared regardless.
func logout(ctx context.Context, auth Authenticator, sessions *session.Manager) tea.Cmd {
	return func() tea.Msg {
		err := auth.Logout(ctx)
		if clearErr := sessions.Clear(); clearErr != nil && err == nil {
			err = clearErr
		}
		return logoutDoneMsg{err: err}
	}
}

func (m ordersModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Mes commandes"))
	b.WriteString("  ")
	b.WriteString(mutedStyle.Render(m.user.Name + roleSuffix(m.user.Role)))
	b.WriteString("\n\n")
	b.WriteString(m.filterLine())
	b.WriteString("\n\n")
	b.WriteString(m.table())
	b.WriteString("\n")
	b.WriteString(m.footer())
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(errorStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render(helpLine(
		m.keys.NextPage, m.keys.PrevPage, m.keys.PageSize, m.keys.Client, m.keys.Expedition,
		m.keys.Payment, m.keys.Status, m.keys.MinAmount, m.keys.MaxAmount, m.keys.ClearFilters,
		m.keys.Refresh, m.keys.Logout, m.keys.Quit,
	)))
	return b.String()
}

func roleSuffix(role string) string {
	if role == "" {
		return ""
	}
	return " (" + role + ")"
}

func (m ordersModel) filterLine() string {
	all := func(v string) string {
		if v == "" {
			return "Tous"
		}
		return v
	}
	parts := []string{
		labelStyle.Render("Client: ") + all(m.clientName(m.filter.ClientID)),
		labelStyle.Render("Expédition: ") + all(m.filter.Expedition),
		labelStyle.Render("Paiement: ") + all(m.filter.PaymentMethod),
		labelStyle.Render("Statut: ") + all(m.filter.Status),
		labelStyle.Render("Min: ") + m.amountLabel(amountMin, m.filter.MinAmount),
		labelStyle.Render("Max: ") + m.amountLabel(amountMax, m.filter.MaxAmount),
	}
	return strings.Join(parts, "  ")
}

func (m ordersModel) amountLabel(field amountField, value string) string {
	if m.editing == field {
		return m.amountInput.View()
	}
	if value == "" {
		return "-"
	}
	return value
}

func (m ordersModel) table() string {
	var b strings.Builder
	header := make([]string, 0, len(columns))
	for _, c := range columns {
		header = append(header, cell(c.title, c.width))
	}
	b.WriteString(headingStyle.Render(strings.Join(header, " ")))
	b.WriteString("\n")

	if m.loading && len(m.rows) == 0 {
		b.WriteString(mutedStyle.Render(msgLoading))
		b.WriteString("\n")
		return b.String()
	}
	if len(m.rows) == 0 {
		b.WriteString(mutedStyle.Render("Aucune commande"))
		b.WriteString("\n")
		return b.String()
	}

	for _, r := range m.rows {
		fields := []string{
			cell(r.ID, columns[0].width),
			cell(orders.FormatDate(r.Date), columns[1].width),
			cell(r.ClientName, columns[2].width),
			cell(r.Type, columns[3].width),
			cell(r.Payment, columns[4].width),
			cell(r.Shipping, columns[5].width),
			cell(fmt.Sprintf("%*s", columns[6].width-1, orders.FormatAmount(r.Amount)), columns[6].width),
			badge(r.Status),
		}
		b.WriteString(strings.Join(fields, " "))
		b.WriteString("\n")
	}
	return b.String()
}

func (m ordersModel) footer() string {
	pages := m.pagination.PageCount(m.total)
	text := fmt.Sprintf("Page %d/%d  ·  %d commandes  ·  %d par page",
		m.pagination.Page+1, pages, m.total, m.pagination.PageSize)
	if m.loading {
		text += "  ·  " + msgLoading
	}
	return mutedStyle.Render(text)
}
