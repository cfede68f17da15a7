package schema

const documentURL = "document.schema.json"

func nullable(kind string) map[string]any {
	return map[string]any{
		"type": []any{kind, "null"},
	}
}

func party() map[string]any {
	return map[string]any{
		"type": []any{"object", "null"},

		"properties": map[string]any{
			"name":    nullable("string"),
			"address": nullable("string"),
			"oib":     nullable("string"),
			"iban":    nullable("string"),
		},
	}
}

// Document returns the JSON schema of an extracted document record.
// Each call returns a fresh copy that callers may modify.
func Document() map[string]any {
	return map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",

		"type":     "object",
		"required": []any{"documentType", "items", "totals"},

		"properties": map[string]any{
			"documentType": map[string]any{
				"type": "string",
				"enum": []any{"invoice", "quote", "delivery_note"},
			},

			"documentNumber": nullable("string"),
			"date":           nullable("string"),
			"dueDate":        nullable("string"),
			"currency":       nullable("string"),

			"supplier": party(),
			"buyer":    party(),

			"items": map[string]any{
				"type": "array",

				"items": map[string]any{
					"type":     "object",
					"required": []any{"description", "quantity", "unit", "unitPrice", "totalPrice"},

					"properties": map[string]any{
						"position": nullable("integer"),
						"code":     nullable("string"),

						"description": map[string]any{"type": "string"},
						"unit":        map[string]any{"type": "string"},

						"quantity":        nullable("number"),
						"unitPrice":       nullable("number"),
						"discountPercent": nullable("number"),
						"totalPrice":      nullable("number"),
					},
				},
			},

			"totals": map[string]any{
				"type":     "object",
				"required": []any{"totalAmount"},

				"properties": map[string]any{
					"subtotal":    nullable("number"),
					"vatAmount":   nullable("number"),
					"totalAmount": nullable("number"),
				},
			},
		},
	}
}
