package main

import (
	"fmt"

	"brandconsole/cmd/console/ui"
	"brandconsole/internal/catalog"
	"brandconsole/internal/editor"
	"brandconsole/internal/query"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var editCmd = &cobra.Command{
	Use:   "edit [campaign-id]",
	Short: "Open the campaign editor",
	Long: `Opens the interactive campaign editor.

Use ctrl+p and ctrl+k to pick products and categories. Picks are staged until
confirmed with ctrl+s inside the picker; esc discards them. ctrl+s on the form
saves the campaign. Commissions above the configured threshold ask for a
second confirmation.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	be, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer be.close()

	feed := ui.NewChangeFeed()
	products := query.New(query.Products(be.catalog, cfg.PerPage()),
		query.WithDebounce(cfg.DebounceDuration()),
		query.WithOnChange(feed.OnChange(catalog.TypeProduct)))
	categories := query.New(query.Categories(be.catalog),
		query.WithDebounce(cfg.DebounceDuration()),
		query.WithOnChange(feed.OnChange(catalog.TypeCategory)))
	defer products.Close()
	defer categories.Close()

	inbox := &editor.Inbox{}
	ed := editor.New(be.campaigns, be.catalog, editor.Options{
		MaxItems:   cfg.Selection.MaxItems,
		Threshold:  cfg.Commission.HighValueThreshold,
		Notifier:   inbox,
		Products:   products,
		Categories: categories,
	})
	if err := ed.Load(ctx, args[0]); err != nil {
		return err
	}
	logger.Info("editor started", zap.String("campaign", args[0]), zap.String("backend", cfg.Backend.Kind))

	model := ui.New(ctx, ui.Deps{
		Editor:     ed,
		Inbox:      inbox,
		Feed:       feed,
		Products:   products,
		Categories: categories,
		Styles:     ui.NewStyles(ui.ThemeFor(cfg.UI.DarkMode)),
	})
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	return nil
}
