package editor

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"brandconsole/internal/catalog"
	"brandconsole/internal/money"
)

const dateLayout = "2006-01-02"

// Form holds the raw values of the campaign form.
type Form struct {
	ID             string
	Name           string
	Description    string
	CommissionType string
	Commission     string // as typed, comma or dot decimal
	StartDate      string
	EndDate        string
}

// FormFromCampaign fills a form from a loaded campaign.
func FormFromCampaign(c catalog.Campaign) Form {
	return Form{
		ID:             c.ID,
		Name:           c.Name,
		Description:    c.Description,
		CommissionType: c.CommissionType,
		Commission:     strings.Replace(fmt.Sprintf("%.2f", c.Commission), ".", ",", 1),
		StartDate:      c.StartDate,
		EndDate:        c.EndDate,
	}
}

// ValidationError lists the form fields that block a submit.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "invalid campaign: " + strings.Join(parts, "; ")
}

// Build validates the form and returns the campaign payload with items.
func (f Form) Build(items []catalog.ItemRef) (catalog.Campaign, error) {
	fields := make(map[string]string)

	name := strings.TrimSpace(f.Name)
	if name == "" {
		fields["name"] = "obrigatório"
	}

	commissionType := f.CommissionType
	if commissionType == "" {
		commissionType = catalog.CommissionPercentage
	}
	if commissionType != catalog.CommissionPercentage && commissionType != catalog.CommissionFixed {
		fields["commission_type"] = "tipo desconhecido"
	}

	commission, err := money.ParseLocaleDecimal(f.Commission)
	switch {
	case err != nil:
		fields["commission"] = "valor inválido"
	case commission < 0:
		fields["commission"] = "não pode ser negativa"
	case commissionType == catalog.CommissionPercentage && commission > 100:
		fields["commission"] = "percentual acima de 100"
	}

	var start, end time.Time
	if f.StartDate != "" {
		if start, err = time.Parse(dateLayout, f.StartDate); err != nil {
			fields["start_date"] = "use AAAA-MM-DD"
		}
	}
	if f.EndDate != "" {
		if end, err = time.Parse(dateLayout, f.EndDate); err != nil {
			fields["end_date"] = "use AAAA-MM-DD"
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		fields["end_date"] = "anterior ao início"
	}

	if len(items) == 0 {
		fields["items"] = "selecione ao menos um produto ou categoria"
	}

	if len(fields) > 0 {
		return catalog.Campaign{}, &ValidationError{Fields: fields}
	}
	return catalog.Campaign{
		ID:             f.ID,
		Name:           name,
		Description:    strings.TrimSpace(f.Description),
		CommissionType: commissionType,
		Commission:     commission,
		StartDate:      f.StartDate,
		EndDate:        f.EndDate,
		Items:          append([]catalog.ItemRef(nil), items...),
	}, nil
}
