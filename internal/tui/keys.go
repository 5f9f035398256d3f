package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit      key.Binding
	ForceQuit key.Binding

	// login
	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding

	// order list
	NextPage      key.Binding
	PrevPage      key.Binding
	PageSize      key.Binding
	Client        key.Binding
	Expedition    key.Binding
	Payment       key.Binding
	Status        key.Binding
	MinAmount     key.Binding
	MaxAmount     key.Binding
	ClearFilters  key.Binding
	Refresh       key.Binding
	Logout        key.Binding
	Cancel        key.Binding
	ConfirmAmount key.Binding
}

var DefaultKeyMap = KeyMap{
	Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quitter")),
	ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quitter")),

	NextField: key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "champ suivant")),
	PrevField: key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "champ précédent")),
	Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("entrée", "se connecter")),

	NextPage:      key.NewBinding(key.WithKeys("n", "right", "pgdown"), key.WithHelp("n/→", "page suivante")),
	PrevPage:      key.NewBinding(key.WithKeys("p", "left", "pgup"), key.WithHelp("p/←", "page précédente")),
	PageSize:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "taille de page")),
	Client:        key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "client")),
	Expedition:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "expédition")),
	Payment:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "paiement")),
	Status:        key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "statut")),
	MinAmount:     key.NewBinding(key.WithKeys("["), key.WithHelp("[", "montant min")),
	MaxAmount:     key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "montant max")),
	ClearFilters:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "effacer filtres")),
	Refresh:       key.NewBinding(key.WithKeys("r", "f5"), key.WithHelp("r", "actualiser")),
	Logout:        key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "se déconnecter")),
	Cancel:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "annuler")),
	ConfirmAmount: key.NewBinding(key.WithKeys("enter"), key.WithHelp("entrée", "appliquer")),
}

func helpLine(bindings ...key.Binding) string {
	var out string
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		if out != "" {
			out += "  "
		}
		out += h.Key + " " + h.Desc
	}
	return out
}
