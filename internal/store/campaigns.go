package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"brandconsole/internal/catalog"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GetCampaign returns campaign id with its items in submitted order.
func (s *Store) GetCampaign(ctx context.Context, id string) (catalog.Campaign, error) {
	var c catalog.Campaign
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, commission_type, commission, start_date, end_date
		FROM campaigns WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.CommissionType, &c.Commission, &c.StartDate, &c.EndDate)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Campaign{}, fmt.Errorf("campaign %s: %w", id, catalog.ErrNotFound)
	}
	if err != nil {
		return catalog.Campaign{}, fmt.Errorf("query campaign: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id, item_type FROM campaign_items
		WHERE campaign_id = ? ORDER BY position`, id)
	if err != nil {
		return catalog.Campaign{}, fmt.Errorf("query campaign items: %w", err)
	}
	defer rows.Close()
	c.Items = []catalog.ItemRef{}
	for rows.Next() {
		var ref catalog.ItemRef
		if err := rows.Scan(&ref.ID, &ref.Type); err != nil {
			return catalog.Campaign{}, fmt.Errorf("scan campaign item: %w", err)
		}
		c.Items = append(c.Items, ref)
	}
	return c, rows.Err()
}

// CreateCampaign inserts c, assigning an id when it has none, and returns
// the stored campaign.
func (s *Store) CreateCampaign(ctx context.Context, c catalog.Campaign) (catalog.Campaign, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CommissionType == "" {
		c.CommissionType = catalog.CommissionPercentage
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO campaigns (id, name, description, commission_type, commission, start_date, end_date, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, c.CommissionType, c.Commission, c.StartDate, c.EndDate, now())
	if err != nil {
		return catalog.Campaign{}, fmt.Errorf("insert campaign: %w", err)
	}
	if len(c.Items) > 0 {
		res, err := s.UpdateCampaign(ctx, c)
		if err != nil {
			return catalog.Campaign{}, err
		}
		if !res.Success {
			return catalog.Campaign{}, fmt.Errorf("insert campaign items: %s", res.Message)
		}
	}
	return c, nil
}

// UpdateCampaign replaces the fields and items of an existing campaign.
// Business rule violations are reported through the result, not the error.
func (s *Store) UpdateCampaign(ctx context.Context, c catalog.Campaign) (catalog.UpdateResult, error) {
	if reason := s.rejectItems(c.Items); reason != "" {
		s.logger.Debug("campaign update rejected", zap.String("campaign", c.ID), zap.String("reason", reason))
		return catalog.UpdateResult{Message: reason}, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return catalog.UpdateResult{}, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE campaigns
		SET name = ?, description = ?, commission_type = ?, commission = ?,
			start_date = ?, end_date = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, c.Description, c.CommissionType, c.Commission, c.StartDate, c.EndDate, now(), c.ID)
	if err != nil {
		return catalog.UpdateResult{}, fmt.Errorf("update campaign: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.UpdateResult{Message: "Campanha não encontrada"}, nil
	}

	missing, err := missingItems(ctx, tx, c.Items)
	if err != nil {
		return catalog.UpdateResult{}, err
	}
	if len(missing) > 0 {
		return catalog.UpdateResult{Message: fmt.Sprintf("Item não encontrado no catálogo: %s (%s)", missing[0].ID, missing[0].Type)}, nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM campaign_items WHERE campaign_id = ?`, c.ID); err != nil {
		return catalog.UpdateResult{}, fmt.Errorf("clear campaign items: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO campaign_items (campaign_id, position, item_id, item_type) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return catalog.UpdateResult{}, fmt.Errorf("prepare item insert: %w", err)
	}
	defer stmt.Close()
	for i, ref := range c.Items {
		if _, err := stmt.ExecContext(ctx, c.ID, i, ref.ID, string(ref.Type)); err != nil {
			return catalog.UpdateResult{}, fmt.Errorf("insert campaign item %s: %w", ref.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return catalog.UpdateResult{}, fmt.Errorf("commit update: %w", err)
	}
	s.logger.Info("campaign updated", zap.String("campaign", c.ID), zap.Int("items", len(c.Items)))
	return catalog.UpdateResult{Success: true}, nil
}

func (s *Store) rejectItems(items []catalog.ItemRef) string {
	if len(items) > s.maxItems {
		return fmt.Sprintf("Limite de %d itens por campanha excedido", s.maxItems)
	}
	seen := make(map[catalog.ItemRef]bool, len(items))
	for _, ref := range items {
		if !ref.Type.Valid() {
			return fmt.Sprintf("Tipo de item inválido: %q", ref.Type)
		}
		if seen[ref] {
			return fmt.Sprintf("Item duplicado: %s (%s)", ref.ID, ref.Type)
		}
		seen[ref] = true
	}
	return ""
}

func missingItems(ctx context.Context, tx *sql.Tx, items []catalog.ItemRef) ([]catalog.ItemRef, error) {
	var missing []catalog.ItemRef
	for _, ref := range items {
		table := "products"
		if ref.Type == catalog.TypeCategory {
			table = "categories"
		}
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM `+table+` WHERE id = ?)`, ref.ID).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check item %s: %w", ref.ID, err)
		}
		if !exists {
			missing = append(missing, ref)
		}
	}
	return missing, nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
