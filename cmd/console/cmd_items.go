package main

import (
	"fmt"
	"strconv"

	"brandconsole/cmd/console/ui"
	"brandconsole/internal/catalog"
	"brandconsole/internal/editor"
	"brandconsole/internal/money"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var itemsCmd = &cobra.Command{
	Use:   "items [campaign-id]",
	Short: "List the items of a campaign",
	Args:  cobra.ExactArgs(1),
	RunE:  runItems,
}

var (
	catalogSearch     string
	catalogSort       string
	catalogPage       int
	catalogPerPage    int
	catalogCategories bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Search the product or category catalog",
	Args:  cobra.NoArgs,
	RunE:  runCatalog,
}

func init() {
	catalogCmd.Flags().StringVarP(&catalogSearch, "search", "s", "", "Search term (name or SKU)")
	catalogCmd.Flags().StringVar(&catalogSort, "sort", "", "Price order: asc or desc")
	catalogCmd.Flags().IntVarP(&catalogPage, "page", "p", 1, "Page number")
	catalogCmd.Flags().IntVar(&catalogPerPage, "per-page", 0, "Page size (default from config)")
	catalogCmd.Flags().BoolVar(&catalogCategories, "categories", false, "List categories instead of products")
}

func runItems(cmd *cobra.Command, args []string) error {
	be, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer be.close()

	ed := editor.New(be.campaigns, be.catalog, editor.Options{MaxItems: cfg.Selection.MaxItems})
	if err := ed.Load(cmd.Context(), args[0]); err != nil {
		return err
	}

	styles := ui.NewStyles(ui.ThemeFor(cfg.UI.DarkMode))
	fm := money.Default()
	coord := ed.Coordinator()
	form := ed.Form()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", form.Name, args[0])
	if form.Description != "" {
		fmt.Fprint(out, renderDescription(form.Description, cfg.UI.DarkMode))
	}
	fmt.Fprintf(out, "Itens: %d de %d\n\n", len(coord.Items()), coord.Max())

	products := ui.NewSimpleTable(fmt.Sprintf("Produtos (%d)", len(coord.Committed(catalog.TypeProduct))),
		[]string{"ID", "Nome", "SKU", "Preço", "Comissão"})
	for _, r := range coord.Committed(catalog.TypeProduct) {
		products.AddRow(r.ID, r.Name, r.SKU, fm.Cents(r.PriceCents), fm.Percent(r.Commission))
	}
	categories := ui.NewSimpleTable(fmt.Sprintf("Categorias (%d)", len(coord.Committed(catalog.TypeCategory))),
		[]string{"ID", "Nome", "Comissão"})
	for _, r := range coord.Committed(catalog.TypeCategory) {
		categories.AddRow(r.ID, r.Name, fm.Percent(r.Commission))
	}
	fmt.Fprintln(out, products.View(styles))
	fmt.Fprintln(out, categories.View(styles))
	return nil
}

func runCatalog(cmd *cobra.Command, args []string) error {
	order, err := parseSort(catalogSort)
	if err != nil {
		return err
	}
	be, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer be.close()

	ctx := cmd.Context()
	styles := ui.NewStyles(ui.ThemeFor(cfg.UI.DarkMode))
	fm := money.Default()
	out := cmd.OutOrStdout()

	if catalogCategories {
		list, err := be.catalog.GetCategories(ctx, catalog.CategoryQuery{Name: catalogSearch})
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		t := ui.NewSimpleTable(fmt.Sprintf("Categorias (%d)", len(list)), []string{"ID", "Nome", "Comissão"})
		for _, r := range list {
			t.AddRow(r.ID, r.Name, fm.Percent(r.Commission))
		}
		fmt.Fprintln(out, t.View(styles))
		return nil
	}

	perPage := catalogPerPage
	if perPage <= 0 {
		perPage = cfg.PerPage()
	}
	page, err := be.catalog.GetProducts(ctx, catalog.ProductQuery{
		Page:    catalogPage,
		PerPage: perPage,
		Search:  catalogSearch,
		OrderBy: order.OrderBy(),
	})
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	t := ui.NewSimpleTable(fmt.Sprintf("Produtos (%d)", page.Meta.TotalItems),
		[]string{"ID", "Nome", "SKU", "Categoria", "Preço", "Comissão"})
	for _, r := range page.Items {
		t.AddRow(r.ID, r.Name, r.SKU, r.CategoryName, fm.Cents(r.PriceCents), fm.Percent(r.Commission))
	}
	fmt.Fprintln(out, t.View(styles))
	fmt.Fprintf(out, "Página %d de %d\n", page.Meta.CurrentPage, max(page.Meta.LastPage, 1))
	return nil
}

func parseSort(s string) (catalog.SortOrder, error) {
	switch s {
	case "", "none":
		return catalog.SortNone, nil
	case "asc", "price_asc":
		return catalog.SortAsc, nil
	case "desc", "price_desc":
		return catalog.SortDesc, nil
	}
	return catalog.SortNone, fmt.Errorf("invalid sort %s (valid: asc, desc)", strconv.Quote(s))
}

// renderDescription renders a campaign description as markdown, falling back
// to the raw text when the renderer cannot be built.
func renderDescription(md string, dark bool) string {
	style := glamour.WithAutoStyle()
	if !dark {
		style = glamour.WithStylePath("light")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(80))
	if err != nil {
		return md + "\n"
	}
	out, err := r.Render(md)
	if err != nil {
		return md + "\n"
	}
	return out
}
