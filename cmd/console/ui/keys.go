package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the key bindings of the editor and its pickers.
type KeyMap struct {
	NextField      key.Binding
	PrevField      key.Binding
	OpenProducts   key.Binding
	OpenCategories key.Binding
	Submit         key.Binding
	Quit           key.Binding

	Up       key.Binding
	Down     key.Binding
	Toggle   key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Sort     key.Binding
	Retry    key.Binding
	Confirm  key.Binding
	Cancel   key.Binding

	Yes key.Binding
	No  key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextField:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "próximo campo")),
		PrevField:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "campo anterior")),
		OpenProducts:   key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "produtos")),
		OpenCategories: key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "categorias")),
		Submit:         key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "salvar")),
		Quit:           key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "sair")),

		Up:       key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "acima")),
		Down:     key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "abaixo")),
		Toggle:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "adicionar/remover")),
		NextPage: key.NewBinding(key.WithKeys("pgdown", "ctrl+n"), key.WithHelp("pgdn", "próxima página")),
		PrevPage: key.NewBinding(key.WithKeys("pgup", "ctrl+b"), key.WithHelp("pgup", "página anterior")),
		Sort:     key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "ordenar por preço")),
		Retry:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "tentar novamente")),
		Confirm:  key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "confirmar")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancelar")),

		Yes: key.NewBinding(key.WithKeys("y", "s", "enter"), key.WithHelp("s", "confirmar")),
		No:  key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "voltar")),
	}
}

// editorHelp lists the bindings of the campaign form.
type editorHelp struct{ k KeyMap }

func (h editorHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.NextField, h.k.OpenProducts, h.k.OpenCategories, h.k.Submit, h.k.Quit}
}

func (h editorHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{{h.k.NextField, h.k.PrevField}, {h.k.OpenProducts, h.k.OpenCategories}, {h.k.Submit, h.k.Quit}}
}

// pickerHelp lists the bindings of an open picker. Sorting only applies to
// paginated pickers.
type pickerHelp struct {
	k         KeyMap
	paginated bool
}

func (h pickerHelp) ShortHelp() []key.Binding {
	b := []key.Binding{h.k.Toggle, h.k.Confirm, h.k.Cancel}
	if h.paginated {
		b = append(b, h.k.NextPage, h.k.PrevPage, h.k.Sort)
	}
	return b
}

func (h pickerHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp(), {h.k.Up, h.k.Down, h.k.Retry}}
}

// dialogHelp lists the bindings of the confirmation dialog.
type dialogHelp struct{ k KeyMap }

func (h dialogHelp) ShortHelp() []key.Binding { return []key.Binding{h.k.Yes, h.k.No} }

func (h dialogHelp) FullHelp() [][]key.Binding { return [][]key.Binding{h.ShortHelp()} }
