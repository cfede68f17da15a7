package locale

var (
	dateFields  = []string{"date", "dueDate"}
	itemFields  = []string{"quantity", "unitPrice", "discountPercent", "totalPrice"}
	totalFields = []string{"subtotal", "vatAmount", "totalAmount"}
)

// NormalizeRecord rewrites locale formatted dates and amounts of a decoded
// document record in place. Only string values are touched; values that
// cannot be parsed become nil. Applying it twice yields the same record.
func NormalizeRecord(record map[string]any) map[string]any {
	if record == nil {
		return nil
	}

	for _, key := range dateFields {
		s, ok := record[key].(string)

		if !ok {
			continue
		}

		if val, ok := ParseDate(s); ok {
			record[key] = val
		} else {
			record[key] = nil
		}
	}

	if items, ok := record["items"].([]any); ok {
		for _, item := range items {
			if m, ok := item.(map[string]any); ok {
				normalizeNumbers(m, itemFields)
			}
		}
	}

	if totals, ok := record["totals"].(map[string]any); ok {
		normalizeNumbers(totals, totalFields)
	}

	return record
}

func normalizeNumbers(m map[string]any, keys []string) {
	for _, key := range keys {
		s, ok := m[key].(string)

		if !ok {
			continue
		}

		if val, ok := ParseNumber(s); ok {
			m[key] = val
		} else {
			m[key] = nil
		}
	}
}
