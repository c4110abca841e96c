package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"brandconsole/internal/catalog"
	"brandconsole/internal/logging"
	"brandconsole/internal/query"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrSaveInProgress is returned when a save starts while another is running.
var ErrSaveInProgress = errors.New("editor: save already in progress")

// SaveRejectedError carries the campaign service's refusal message.
type SaveRejectedError struct {
	Message string
}

func (e *SaveRejectedError) Error() string {
	if e.Message == "" {
		return "campaign update rejected"
	}
	return "campaign update rejected: " + e.Message
}

// Outcome is the result of a submit.
type Outcome int

const (
	OutcomeSaved Outcome = iota
	OutcomeNeedsConfirmation
)

func (o Outcome) String() string {
	if o == OutcomeNeedsConfirmation {
		return "needs_confirmation"
	}
	return "saved"
}

// MissingName labels committed references the catalog no longer knows.
const MissingName = "(indisponível)"

// Options configures an Editor.
type Options struct {
	MaxItems   int
	Threshold  float64
	Notifier   Notifier
	Products   *query.Controller
	Categories *query.Controller
}

// Editor is the campaign edit session: the form, the committed selections
// and the gated save path.
type Editor struct {
	campaigns catalog.CampaignService
	catalog   catalog.CatalogService
	coord     *Coordinator
	gate      *Gate
	notifier  Notifier
	logger    *zap.Logger

	mu     sync.Mutex
	form   Form
	saving bool
}

// New returns an editor for an empty campaign.
func New(campaigns catalog.CampaignService, catalogSvc catalog.CatalogService, opts Options) *Editor {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}
	coordOpts := []CoordinatorOption{WithNotifier(notifier)}
	if opts.Products != nil {
		coordOpts = append(coordOpts, WithQuery(catalog.TypeProduct, opts.Products))
	}
	if opts.Categories != nil {
		coordOpts = append(coordOpts, WithQuery(catalog.TypeCategory, opts.Categories))
	}
	return &Editor{
		campaigns: campaigns,
		catalog:   catalogSvc,
		coord:     NewCoordinator(opts.MaxItems, coordOpts...),
		gate:      NewGate(opts.Threshold),
		notifier:  notifier,
		logger:    logging.Get(logging.CategoryEditor),
		form:      Form{CommissionType: catalog.CommissionPercentage},
	}
}

// Coordinator returns the picker coordinator.
func (e *Editor) Coordinator() *Coordinator { return e.coord }

// Gate returns the high-value confirmation gate.
func (e *Editor) Gate() *Gate { return e.gate }

// Form returns a copy of the form values.
func (e *Editor) Form() Form {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.form
}

// SetForm replaces the form values.
func (e *Editor) SetForm(f Form) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.form = f
}

// Saving reports whether a save is running.
func (e *Editor) Saving() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saving
}

// Load fetches campaign id, fills the form, and resolves the display records
// of its committed items so they render without another catalog query.
func (e *Editor) Load(ctx context.Context, id string) error {
	c, err := e.campaigns.GetCampaign(ctx, id)
	if err != nil {
		return fmt.Errorf("load campaign %s: %w", id, err)
	}

	productIDs := c.RefsOf(catalog.TypeProduct)
	categoryIDs := c.RefsOf(catalog.TypeCategory)
	var products, categories []catalog.DisplayRecord

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if len(productIDs) == 0 {
			return nil
		}
		recs, err := e.catalog.GetProductsByIDs(gctx, productIDs)
		if err != nil {
			return fmt.Errorf("resolve products: %w", err)
		}
		products = ordered(catalog.TypeProduct, productIDs, recs)
		return nil
	})
	g.Go(func() error {
		if len(categoryIDs) == 0 {
			return nil
		}
		recs, err := e.catalog.GetCategoriesByIDs(gctx, categoryIDs)
		if err != nil {
			return fmt.Errorf("resolve categories: %w", err)
		}
		categories = ordered(catalog.TypeCategory, categoryIDs, recs)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if err := e.coord.Load(catalog.TypeProduct, products); err != nil {
		return err
	}
	if err := e.coord.Load(catalog.TypeCategory, categories); err != nil {
		return err
	}
	e.SetForm(FormFromCampaign(c))
	e.logger.Debug("campaign loaded",
		zap.String("id", id),
		zap.Int("products", len(products)),
		zap.Int("categories", len(categories)))
	return nil
}

// ordered returns records in the order of ids. An id the catalog did not
// return keeps its slot with a placeholder record.
func ordered(t catalog.ItemType, ids []string, recs []catalog.DisplayRecord) []catalog.DisplayRecord {
	byID := make(map[string]catalog.DisplayRecord, len(recs))
	for _, r := range recs {
		byID[r.ID] = r
	}
	out := make([]catalog.DisplayRecord, 0, len(ids))
	for _, id := range ids {
		rec, ok := byID[id]
		if !ok {
			rec = catalog.DisplayRecord{ID: id, Type: t, Name: MissingName}
		}
		rec.Type = t
		out = append(out, rec)
	}
	return out
}

// Payload validates the form and returns the campaign to submit, carrying
// the committed items of both pickers.
func (e *Editor) Payload() (catalog.Campaign, error) {
	return e.Form().Build(e.coord.Items())
}

// Submit runs the original submit path: payloads above the commission
// threshold are held for confirmation, everything else is saved.
func (e *Editor) Submit(ctx context.Context, c catalog.Campaign) (Outcome, error) {
	held, err := e.gate.Intercept(c)
	if err != nil {
		return OutcomeSaved, err
	}
	if held {
		e.logger.Info("high-value commission held for confirmation",
			zap.String("campaign", c.ID),
			zap.Float64("commission", c.Commission),
			zap.Float64("threshold", e.gate.Threshold()))
		return OutcomeNeedsConfirmation, nil
	}
	return OutcomeSaved, e.Save(ctx, c)
}

// ConfirmHighValue saves the held payload exactly as it was submitted.
func (e *Editor) ConfirmHighValue(ctx context.Context) error {
	c, err := e.gate.Release()
	if err != nil {
		return err
	}
	return e.Save(ctx, c)
}

// CancelHighValue drops the held payload without saving.
func (e *Editor) CancelHighValue() bool {
	return e.gate.Cancel()
}

// Save sends c to the campaign service. Failures are reported through the
// notifier; selections are left as they are so the user can retry.
func (e *Editor) Save(ctx context.Context, c catalog.Campaign) error {
	e.mu.Lock()
	if e.saving {
		e.mu.Unlock()
		return ErrSaveInProgress
	}
	e.saving = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.saving = false
		e.mu.Unlock()
	}()

	res, err := e.campaigns.UpdateCampaign(ctx, c)
	if err != nil {
		e.logger.Error("campaign update failed", zap.String("campaign", c.ID), zap.Error(err))
		e.notifier.Notify(Notice{Level: LevelError, Text: "Erro ao salvar campanha: " + err.Error()})
		return fmt.Errorf("update campaign %s: %w", c.ID, err)
	}
	if !res.Success {
		e.logger.Error("campaign update rejected", zap.String("campaign", c.ID), zap.String("message", res.Message))
		text := res.Message
		if text == "" {
			text = "Não foi possível salvar a campanha"
		}
		e.notifier.Notify(Notice{Level: LevelError, Text: text})
		return &SaveRejectedError{Message: res.Message}
	}

	e.logger.Info("campaign updated", zap.String("campaign", c.ID), zap.Int("items", len(c.Items)))
	e.notifier.Notify(Notice{Level: LevelSuccess, Text: "Campanha atualizada com sucesso"})
	return nil
}
