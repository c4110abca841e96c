package ui

import (
	"context"
	"fmt"
	"strings"

	"brandconsole/internal/catalog"
	"brandconsole/internal/editor"
	"brandconsole/internal/money"
	"brandconsole/internal/query"
	"brandconsole/internal/selection"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const pickerRows = 10

// PickerModel is the modal that stages products or categories for the
// campaign. Edits go to the coordinator's draft until confirmed.
type PickerModel struct {
	typ   catalog.ItemType
	coord *editor.Coordinator
	ctrl  *query.Controller

	search  textinput.Model
	table   table.Model
	pager   paginator.Model
	spinner spinner.Model
	help    help.Model

	records []catalog.DisplayRecord
	snap    query.Snapshot
	status  string

	keys   KeyMap
	styles Styles
	money  money.Formatter
}

// NewPickerModel creates the picker for items of type t.
func NewPickerModel(t catalog.ItemType, coord *editor.Coordinator, ctrl *query.Controller, styles Styles) PickerModel {
	search := textinput.New()
	search.Prompt = "Buscar: "
	search.CharLimit = 80
	if t == catalog.TypeCategory {
		search.Placeholder = "nome da categoria"
	} else {
		search.Placeholder = "nome ou SKU"
	}

	var columns []table.Column
	if t == catalog.TypeCategory {
		columns = []table.Column{
			{Title: "", Width: 7},
			{Title: "Categoria", Width: 40},
			{Title: "Comissão", Width: 10},
		}
	} else {
		columns = []table.Column{
			{Title: "", Width: 7},
			{Title: "Produto", Width: 34},
			{Title: "SKU", Width: 12},
			{Title: "Preço", Width: 14},
			{Title: "Comissão", Width: 10},
		}
	}
	tbl := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(pickerRows),
	)
	ts := table.DefaultStyles()
	ts.Header = ts.Header.Foreground(styles.Theme.Primary).Bold(true)
	ts.Selected = ts.Selected.Foreground(lipgloss.Color("#ffffff")).Background(styles.Theme.Primary)
	tbl.SetStyles(ts)

	pager := paginator.New()
	pager.Type = paginator.Arabic
	pager.ArabicFormat = "Página %d de %d"
	pager.TotalPages = 1

	spin := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Spinner))

	return PickerModel{
		typ:     t,
		coord:   coord,
		ctrl:    ctrl,
		search:  search,
		table:   tbl,
		pager:   pager,
		spinner: spin,
		help:    help.New(),
		keys:    DefaultKeyMap(),
		styles:  styles,
		money:   money.Default(),
	}
}

// Type returns the item type the picker stages.
func (m PickerModel) Type() catalog.ItemType { return m.typ }

// Open starts a picker session seeded from the committed selection.
func (m *PickerModel) Open(ctx context.Context) (tea.Cmd, error) {
	if err := m.coord.Open(ctx, m.typ); err != nil {
		return nil, err
	}
	m.status = ""
	m.search.SetValue(m.ctrl.Snapshot().State.RawSearch)
	m.table.SetCursor(0)
	m.Refresh()
	return tea.Batch(m.search.Focus(), m.spinner.Tick), nil
}

// Refresh pulls the controller's latest state into the view.
func (m *PickerModel) Refresh() {
	m.snap = m.ctrl.Snapshot()
	m.records = m.snap.Page.Items
	m.pager.TotalPages = max(m.snap.Page.Meta.LastPage, 1)
	m.pager.Page = min(max(m.snap.Page.Meta.CurrentPage, 1), m.pager.TotalPages) - 1
	m.rebuildRows()
}

func (m *PickerModel) rebuildRows() {
	full := m.coord.Remaining() == 0
	rows := make([]table.Row, 0, len(m.records))
	for _, rec := range m.records {
		mark := ""
		switch {
		case m.coord.IsSelected(rec.ID):
			mark = "  ✓"
		case full:
			mark = "limite"
		}
		if m.typ == catalog.TypeCategory {
			rows = append(rows, table.Row{mark, rec.Name, m.money.Percent(rec.Commission)})
			continue
		}
		rows = append(rows, table.Row{mark, rec.Name, rec.SKU, m.money.Cents(rec.PriceCents), m.money.Percent(rec.Commission)})
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

// Update handles input while the picker is open.
func (m PickerModel) Update(msg tea.Msg) (PickerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		paginated := m.typ == catalog.TypeProduct
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.coord.Cancel()
			m.search.SetValue("")
			m.search.Blur()
			return m, m.closed(false)
		case key.Matches(msg, m.keys.Confirm):
			m.coord.Confirm()
			m.search.Blur()
			return m, m.closed(true)
		case key.Matches(msg, m.keys.Up):
			m.table.MoveUp(1)
		case key.Matches(msg, m.keys.Down):
			m.table.MoveDown(1)
		case key.Matches(msg, m.keys.Toggle):
			m.toggle()
		case paginated && key.Matches(msg, m.keys.NextPage):
			m.ctrl.NextPage()
			m.Refresh()
		case paginated && key.Matches(msg, m.keys.PrevPage):
			m.ctrl.PrevPage()
			m.Refresh()
		case paginated && key.Matches(msg, m.keys.Sort):
			m.ctrl.CycleSort()
			m.Refresh()
		case key.Matches(msg, m.keys.Retry):
			if m.snap.Err != nil {
				_ = m.ctrl.Retry()
				m.Refresh()
			}
		default:
			before := m.search.Value()
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			if v := m.search.Value(); v != before {
				m.ctrl.SetSearchTerm(v)
				m.Refresh()
			}
			return m, cmd
		}
	}
	return m, nil
}

func (m *PickerModel) toggle() {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.records) {
		return
	}
	res, removed, err := m.coord.Toggle(m.records[i])
	if err != nil {
		m.status = err.Error()
		return
	}
	switch {
	case removed:
		m.status = ""
	case res == selection.CapReached:
		m.status = fmt.Sprintf("Limite de %d itens por campanha atingido", m.coord.Max())
	default:
		m.status = ""
	}
	m.rebuildRows()
}

func (m PickerModel) closed(confirmed bool) tea.Cmd {
	t := m.typ
	return func() tea.Msg { return pickerClosedMsg{typ: t, confirmed: confirmed} }
}

// View renders the picker modal.
func (m PickerModel) View() string {
	var sb strings.Builder

	title := "Adicionar produtos"
	if m.typ == catalog.TypeCategory {
		title = "Adicionar categorias"
	}
	sb.WriteString(m.styles.Title.Render(title) + "\n")
	sb.WriteString(m.search.View() + "\n")
	if m.typ == catalog.TypeProduct {
		sb.WriteString(m.styles.Muted.Render("Ordenação: "+sortLabel(m.snap.State.Sort)) + "\n")
	}
	sb.WriteString("\n")

	switch {
	case m.snap.Loading:
		sb.WriteString(m.spinner.View() + m.styles.Muted.Render(" Carregando...") + "\n")
	case m.snap.Err != nil:
		sb.WriteString(m.styles.Error.Render("Erro ao carregar: "+m.snap.Err.Error()) +
			m.styles.Muted.Render("  (ctrl+r para tentar novamente)") + "\n")
	}

	if len(m.records) == 0 && m.snap.Loaded {
		sb.WriteString(m.styles.Subtitle.Render("Nenhum resultado encontrado") + "\n")
	} else {
		sb.WriteString(m.table.View() + "\n")
	}
	if m.typ == catalog.TypeProduct {
		sb.WriteString(m.pager.View() + "\n")
	}

	staged := m.coord.Staged()
	names := make([]string, 0, len(staged))
	for _, rec := range staged {
		names = append(names, rec.Name)
	}
	sb.WriteString("\n" + m.styles.Bold.Render(fmt.Sprintf("Selecionados (%d)", len(staged))) +
		m.styles.Muted.Render(fmt.Sprintf("  restam %d de %d", m.coord.Remaining(), m.coord.Max())) + "\n")
	if len(names) > 0 {
		sb.WriteString(m.styles.Body.Render(strings.Join(names, ", ")) + "\n")
	}
	if m.status != "" {
		sb.WriteString(m.styles.Warning.Render(m.status) + "\n")
	}
	sb.WriteString("\n" + m.help.View(pickerHelp{k: m.keys, paginated: m.typ == catalog.TypeProduct}))

	return m.styles.Modal.Render(sb.String())
}

func sortLabel(o catalog.SortOrder) string {
	switch o {
	case catalog.SortAsc:
		return "menor preço"
	case catalog.SortDesc:
		return "maior preço"
	default:
		return "padrão"
	}
}
