package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
)

// Ticket field names as emitted by the extraction schema, with the
// English spellings accepted as aliases.
var (
	fieldID    = []string{"id"}
	fieldStore = []string{"tienda", "store"}
	fieldDate  = []string{"fecha", "date"}
	fieldItems = []string{"items"}
	fieldTotal = []string{"total_ticket", "total"}

	fieldItemName      = []string{"nombre", "name"}
	fieldItemCategory  = []string{"categoria", "category"}
	fieldItemUnitPrice = []string{"precio_unitario", "unit_price"}
	fieldItemQuantity  = []string{"cantidad", "quantity"}
	fieldItemDiscount  = []string{"descuento", "discount"}
	fieldItemLineTotal = []string{"precio_total_linea", "line_total"}
)

// ValidateTicket turns raw model output into a Ticket. It is strict on the
// ticket's identity fields and lenient on items: absent item fields take
// their defaults, but a field present with the wrong type is rejected.
// Line totals are not reconciled against price and quantity.
//
// Every failure is a *domain.ValidationError.
func ValidateTicket(raw []byte) (*domain.Ticket, error) {
	var v any
	if err := decodeJSON(raw, &v); err != nil {
		return nil, domain.NewValidationError(domain.CodeMalformedJSON, "", "decode: %v", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, domain.NewValidationError(domain.CodeMalformedJSON, "", "expected an object, got %s", jsonKind(v))
	}

	ticket := &domain.Ticket{}

	if id, ok := lookup(obj, fieldID); ok && id != nil {
		ticket.ID = strings.TrimSpace(domain.Stringify(id))
	}

	store, _ := lookup(obj, fieldStore)
	storeName, ok := store.(string)
	if !ok || strings.TrimSpace(storeName) == "" {
		return nil, domain.NewValidationError(domain.CodeMissingStore, fieldStore[0], "store is required")
	}
	ticket.Store = strings.TrimSpace(storeName)

	date, _ := lookup(obj, fieldDate)
	dateText, ok := date.(string)
	if !ok {
		return nil, domain.NewValidationError(domain.CodeInvalidDate, fieldDate[0], "date must be text, got %s", jsonKind(date))
	}
	ticket.Date = strings.TrimSpace(dateText)

	total, present := lookup(obj, fieldTotal)
	amount, ok := asNumber(total)
	if !present || !ok {
		return nil, domain.NewValidationError(domain.CodeInvalidTotal, fieldTotal[0], "total must be a number, got %s", jsonKind(total))
	}
	if amount.IsNegative() {
		return nil, domain.NewValidationError(domain.CodeInvalidTotal, fieldTotal[0], "total must not be negative, got %s", amount)
	}
	ticket.Total = amount

	items, present := lookup(obj, fieldItems)
	if present && items != nil {
		list, ok := items.([]any)
		if !ok {
			return nil, domain.NewValidationError(domain.CodeInvalidItems, fieldItems[0], "items must be an array, got %s", jsonKind(items))
		}
		ticket.Items = make([]domain.LineItem, 0, len(list))
		for i, entry := range list {
			item, err := validateItem(i, entry)
			if err != nil {
				return nil, err
			}
			ticket.Items = append(ticket.Items, item)
		}
	}

	return ticket, nil
}

func validateItem(index int, v any) (domain.LineItem, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return domain.LineItem{}, itemError(index, "", "expected an object, got %s", jsonKind(v))
	}

	name, _ := lookup(obj, fieldItemName)
	text, ok := name.(string)
	if !ok || strings.TrimSpace(text) == "" {
		return domain.LineItem{}, itemError(index, fieldItemName[0], "name is required")
	}

	item := domain.LineItem{
		Name:     strings.TrimSpace(text),
		Category: domain.DefaultCategory,
		Quantity: decimal.NewFromInt(1),
	}

	if cat, ok := lookup(obj, fieldItemCategory); ok && cat != nil {
		s, isText := cat.(string)
		if !isText {
			return domain.LineItem{}, itemError(index, fieldItemCategory[0], "category must be text, got %s", jsonKind(cat))
		}
		if s = strings.TrimSpace(s); s != "" {
			item.Category = s
		}
	}

	numbers := []struct {
		keys []string
		dst  *decimal.Decimal
	}{
		{fieldItemUnitPrice, &item.UnitPrice},
		{fieldItemQuantity, &item.Quantity},
		{fieldItemDiscount, &item.Discount},
		{fieldItemLineTotal, &item.LineTotal},
	}
	for _, n := range numbers {
		raw, ok := lookup(obj, n.keys)
		if !ok || raw == nil {
			continue
		}
		d, isNumber := asNumber(raw)
		if !isNumber {
			return domain.LineItem{}, itemError(index, n.keys[0], "must be a number, got %s", jsonKind(raw))
		}
		*n.dst = d
	}

	return item, nil
}

func itemError(index int, field, format string, args ...any) error {
	path := fmt.Sprintf("items[%d]", index)
	if field != "" {
		path += "." + field
	}
	return domain.NewValidationError(domain.CodeInvalidItem, path, format, args...)
}

// lookup returns the first key in obj holding a non-blank value. When every
// present key is null or blank text, the first present one is returned.
func lookup(obj map[string]any, keys []string) (any, bool) {
	var fallback any
	found := false
	for _, k := range keys {
		v, ok := obj[k]
		if !ok {
			continue
		}
		if !isBlank(v) {
			return v, true
		}
		if !found {
			fallback, found = v, true
		}
	}
	return fallback, found
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

// decodeJSON decodes exactly one JSON value, keeping numbers as
// json.Number. Anything after the value is an error.
func decodeJSON(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected content after JSON value")
	}
	return nil
}

func asNumber(v any) (decimal.Decimal, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "text"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "unknown"
	}
}
