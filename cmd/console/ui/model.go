package ui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"brandconsole/internal/catalog"
	"brandconsole/internal/editor"
	"brandconsole/internal/logging"
	"brandconsole/internal/money"
	"brandconsole/internal/query"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

const noticeTTL = 4 * time.Second

type field int

const (
	fieldName field = iota
	fieldDescription
	fieldCommissionType
	fieldCommission
	fieldStartDate
	fieldEndDate
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Nome",
	"Descrição",
	"Tipo de comissão",
	"Comissão",
	"Início",
	"Fim",
}

var formKeys = map[string]field{
	"name":            fieldName,
	"description":     fieldDescription,
	"commission_type": fieldCommissionType,
	"commission":      fieldCommission,
	"start_date":      fieldStartDate,
	"end_date":        fieldEndDate,
}

// Deps wires the editor screen.
type Deps struct {
	Editor     *editor.Editor
	Inbox      *editor.Inbox
	Feed       *ChangeFeed
	Products   *query.Controller
	Categories *query.Controller
	Styles     Styles
}

// Model is the campaign editor screen.
type Model struct {
	ctx   context.Context
	ed    *editor.Editor
	inbox *editor.Inbox
	feed  *ChangeFeed

	products   PickerModel
	categories PickerModel
	open       catalog.ItemType // picker on screen, empty when none

	inputs         [fieldCount]textinput.Model
	commissionType string
	focus          field

	saving    bool
	spinner   spinner.Model
	notice    *editor.Notice
	noticeSeq int

	help   help.Model
	keys   KeyMap
	styles Styles
	money  money.Formatter
	logger *zap.Logger
	width  int
}

// New creates the editor screen from the editor's current form.
func New(ctx context.Context, d Deps) Model {
	m := Model{
		ctx:        ctx,
		ed:         d.Editor,
		inbox:      d.Inbox,
		feed:       d.Feed,
		products:   NewPickerModel(catalog.TypeProduct, d.Editor.Coordinator(), d.Products, d.Styles),
		categories: NewPickerModel(catalog.TypeCategory, d.Editor.Coordinator(), d.Categories, d.Styles),
		spinner:    spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(d.Styles.Spinner)),
		help:       help.New(),
		keys:       DefaultKeyMap(),
		styles:     d.Styles,
		money:      money.Default(),
		logger:     logging.Get(logging.CategoryUI),
		width:      100,
	}

	f := d.Editor.Form()
	values := [fieldCount]string{f.Name, f.Description, "", f.Commission, f.StartDate, f.EndDate}
	placeholders := [fieldCount]string{"Nome da campanha", "Opcional", "", "ex.: 12,5", "AAAA-MM-DD", "AAAA-MM-DD"}
	for i := range m.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = placeholders[i]
		in.CharLimit = 120
		in.Width = 48
		in.SetValue(values[i])
		m.inputs[i] = in
	}
	m.commissionType = f.CommissionType
	if m.commissionType == "" {
		m.commissionType = catalog.CommissionPercentage
	}
	m.inputs[fieldName].Focus()
	return m
}

// Init starts listening for catalog changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.feed.Listen())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case catalogChangedMsg:
		switch msg.typ {
		case catalog.TypeProduct:
			m.products.Refresh()
		case catalog.TypeCategory:
			m.categories.Refresh()
		}
		cmds = append(cmds, m.feed.Listen())

	case pickerClosedMsg:
		m.open = ""
		m.logger.Debug("picker closed", zap.String("type", string(msg.typ)), zap.Bool("confirmed", msg.confirmed))
		cmds = append(cmds, m.inputs[m.focus].Focus())

	case saveDoneMsg:
		m.saving = false
		if msg.err != nil && !errors.Is(msg.err, editor.ErrSaveInProgress) {
			m.logger.Debug("save finished with error", zap.Error(msg.err))
		}

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = nil
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		switch {
		case m.open == catalog.TypeProduct:
			m.products, cmd = m.products.Update(msg)
		case m.open == catalog.TypeCategory:
			m.categories, cmd = m.categories.Update(msg)
		case m.saving:
			m.spinner, cmd = m.spinner.Update(msg)
		}
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		cmds = append(cmds, cmd)
	}

	if cmd := m.collectNotices(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.ed.Gate().State() == editor.GatePending {
		if m.saving {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Yes):
			return m.confirmHighValue()
		case key.Matches(msg, m.keys.No):
			m.ed.CancelHighValue()
			m.inbox.Notify(editor.Notice{Level: editor.LevelInfo, Text: "Envio cancelado; nada foi salvo"})
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.open {
	case catalog.TypeProduct:
		m.products, cmd = m.products.Update(msg)
		return m, cmd
	case catalog.TypeCategory:
		m.categories, cmd = m.categories.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextField):
		return m, m.setFocus((m.focus + 1) % fieldCount)
	case key.Matches(msg, m.keys.PrevField):
		return m, m.setFocus((m.focus + fieldCount - 1) % fieldCount)
	case key.Matches(msg, m.keys.OpenProducts):
		return m.openPicker(catalog.TypeProduct)
	case key.Matches(msg, m.keys.OpenCategories):
		return m.openPicker(catalog.TypeCategory)
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}

	if m.focus == fieldCommissionType {
		switch msg.String() {
		case " ", "left", "right":
			if m.commissionType == catalog.CommissionFixed {
				m.commissionType = catalog.CommissionPercentage
			} else {
				m.commissionType = catalog.CommissionFixed
			}
		}
		return m, nil
	}
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) setFocus(f field) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = f
	if f == fieldCommissionType {
		return nil
	}
	return m.inputs[f].Focus()
}

func (m Model) openPicker(t catalog.ItemType) (Model, tea.Cmd) {
	if m.saving {
		return m, nil
	}
	m.inputs[m.focus].Blur()
	var (
		cmd tea.Cmd
		err error
	)
	if t == catalog.TypeProduct {
		cmd, err = m.products.Open(m.ctx)
	} else {
		cmd, err = m.categories.Open(m.ctx)
	}
	if err != nil {
		m.inbox.Notify(editor.Notice{Level: editor.LevelError, Text: err.Error()})
		return m, m.inputs[m.focus].Focus()
	}
	m.open = t
	return m, cmd
}

// form reads the inputs back into an editor form.
func (m Model) form() editor.Form {
	f := m.ed.Form()
	f.Name = m.inputs[fieldName].Value()
	f.Description = m.inputs[fieldDescription].Value()
	f.CommissionType = m.commissionType
	f.Commission = m.inputs[fieldCommission].Value()
	f.StartDate = m.inputs[fieldStartDate].Value()
	f.EndDate = m.inputs[fieldEndDate].Value()
	return f
}

func (m Model) submit() (Model, tea.Cmd) {
	if m.saving {
		return m, nil
	}
	m.ed.SetForm(m.form())
	payload, err := m.ed.Payload()
	if err != nil {
		m.inbox.Notify(editor.Notice{Level: editor.LevelError, Text: validationText(err)})
		return m, nil
	}

	m.saving = true
	ed, ctx := m.ed, m.ctx
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		outcome, err := ed.Submit(ctx, payload)
		return saveDoneMsg{outcome: outcome, err: err}
	})
}

func (m Model) confirmHighValue() (Model, tea.Cmd) {
	m.saving = true
	ed, ctx := m.ed, m.ctx
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		return saveDoneMsg{outcome: editor.OutcomeSaved, err: ed.ConfirmHighValue(ctx)}
	})
}

func (m *Model) collectNotices() tea.Cmd {
	notices := m.inbox.Drain()
	if len(notices) == 0 {
		return nil
	}
	n := notices[len(notices)-1]
	m.notice = &n
	m.noticeSeq++
	seq := m.noticeSeq
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg { return clearNoticeMsg{seq: seq} })
}

func validationText(err error) string {
	var verr *editor.ValidationError
	if !errors.As(err, &verr) {
		return err.Error()
	}
	keys := make([]string, 0, len(verr.Fields))
	for k := range verr.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		label := k
		if f, ok := formKeys[k]; ok {
			label = fieldLabels[f]
		} else if k == "items" {
			label = "Itens"
		}
		parts = append(parts, label+": "+verr.Fields[k])
	}
	return "Verifique o formulário. " + strings.Join(parts, "; ")
}

// View renders the screen.
func (m Model) View() string {
	name := strings.TrimSpace(m.inputs[fieldName].Value())
	if name == "" {
		name = "Nova campanha"
	}
	header := m.styles.Header.Render(" Campanha: " + name + " ")

	var body string
	switch {
	case m.ed.Gate().State() == editor.GatePending:
		body = m.dialogView()
	case m.open == catalog.TypeProduct:
		body = m.products.View()
	case m.open == catalog.TypeCategory:
		body = m.categories.View()
	default:
		body = m.formView()
	}

	parts := []string{header, m.styles.Content.Render(body)}
	if line := m.statusLine(); line != "" {
		parts = append(parts, line)
	}
	switch {
	case m.ed.Gate().State() == editor.GatePending:
		parts = append(parts, m.styles.Footer.Render(m.help.View(dialogHelp{k: m.keys})))
	case m.open == "":
		parts = append(parts, m.styles.Footer.Render(m.help.View(editorHelp{k: m.keys})))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) formView() string {
	var sb strings.Builder
	for i := field(0); i < fieldCount; i++ {
		label := m.styles.Label
		if i == m.focus {
			label = m.styles.FocusedLabel
		}
		value := m.inputs[i].View()
		if i == fieldCommissionType {
			value = commissionTypeLabel(m.commissionType)
			if i == m.focus {
				value = m.styles.Badge.Render(value) + m.styles.Muted.Render("  (espaço alterna)")
			}
		}
		sb.WriteString(label.Render(fieldLabels[i]) + value + "\n")
	}
	sb.WriteString("\n" + m.styles.RenderDivider(min(m.width, 80)) + "\n")

	co := m.ed.Coordinator()
	used := co.Max() - co.Remaining()
	sb.WriteString(m.styles.Bold.Render(fmt.Sprintf("Itens da campanha: %d de %d", used, co.Max())) + "\n\n")

	products := co.Committed(catalog.TypeProduct)
	if len(products) == 0 {
		sb.WriteString(m.styles.Subtitle.Render("Nenhum produto selecionado (ctrl+p)") + "\n")
	} else {
		tbl := NewSimpleTable(fmt.Sprintf("Produtos (%d)", len(products)), []string{"Produto", "SKU", "Preço", "Comissão"})
		for _, p := range products {
			tbl.AddRow(p.Name, p.SKU, m.money.Cents(p.PriceCents), m.money.Percent(p.Commission))
		}
		sb.WriteString(tbl.View(m.styles))
	}

	categories := co.Committed(catalog.TypeCategory)
	if len(categories) == 0 {
		sb.WriteString(m.styles.Subtitle.Render("Nenhuma categoria selecionada (ctrl+k)") + "\n")
	} else {
		tbl := NewSimpleTable(fmt.Sprintf("Categorias (%d)", len(categories)), []string{"Categoria", "Comissão"})
		for _, c := range categories {
			tbl.AddRow(c.Name, m.money.Percent(c.Commission))
		}
		sb.WriteString(tbl.View(m.styles))
	}
	return sb.String()
}

func (m Model) dialogView() string {
	pending, _ := m.ed.Gate().Pending()
	text := fmt.Sprintf("A comissão de %s está acima de %s.\nDeseja salvar a campanha mesmo assim?",
		m.money.Percent(pending.Commission), m.money.Percent(m.ed.Gate().Threshold()))
	return m.styles.Dialog.Render(m.styles.Warning.Render("Comissão alta") + "\n\n" + m.styles.Body.Render(text))
}

func (m Model) statusLine() string {
	if m.saving {
		return m.styles.Footer.Render(m.spinner.View() + " Salvando...")
	}
	if m.notice == nil {
		return ""
	}
	style := m.styles.Info
	switch m.notice.Level {
	case editor.LevelSuccess:
		style = m.styles.Success
	case editor.LevelError:
		style = m.styles.Error
	}
	return m.styles.Footer.Render(style.Render(m.notice.Text))
}

func commissionTypeLabel(t string) string {
	if t == catalog.CommissionFixed {
		return "Valor fixo"
	}
	return "Percentual"
}
