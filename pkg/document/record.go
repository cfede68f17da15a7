package document

import (
	"encoding/json"
)

type DocumentType string

const (
	DocumentTypeInvoice      DocumentType = "invoice"
	DocumentTypeQuote        DocumentType = "quote"
	DocumentTypeDeliveryNote DocumentType = "delivery_note"
)

// Record is a validated invoice, quote or delivery note.
// Unknown values encode as explicit nulls.
type Record struct {
	DocumentType DocumentType `json:"documentType"`

	DocumentNumber *string `json:"documentNumber"`

	Date    *string `json:"date"`
	DueDate *string `json:"dueDate"`

	Currency *string `json:"currency"`

	Supplier *Party `json:"supplier"`
	Buyer    *Party `json:"buyer"`

	Items  []Item `json:"items"`
	Totals Totals `json:"totals"`
}

type Party struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`

	OIB  *string `json:"oib"`
	IBAN *string `json:"iban"`
}

type Item struct {
	Position *int    `json:"position"`
	Code     *string `json:"code"`

	Description string `json:"description"`

	Quantity *float64 `json:"quantity"`
	Unit     string   `json:"unit"`

	UnitPrice       *float64 `json:"unitPrice"`
	DiscountPercent *float64 `json:"discountPercent"`
	TotalPrice      *float64 `json:"totalPrice"`
}

type Totals struct {
	Subtotal  *float64 `json:"subtotal"`
	VATAmount *float64 `json:"vatAmount"`

	TotalAmount *float64 `json:"totalAmount"`
}

// DecodeRecord converts a normalized and validated JSON value into a Record.
func DecodeRecord(v any) (*Record, error) {
	data, err := json.Marshal(v)

	if err != nil {
		return nil, err
	}

	var record Record

	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}

	if record.Items == nil {
		record.Items = []Item{}
	}

	return &record, nil
}
