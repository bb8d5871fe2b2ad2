package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"saldo/internal/core"
)

// rowDateLayout is what Sheets recognises as a date-time with USER_ENTERED.
const rowDateLayout = "2006-01-02 15:04:05"

// toRow renders ID | date | description | category | amount | payment method.
func toRow(tx core.Transaction, loc *time.Location) []any {
	return []any{
		tx.ID,
		tx.CreatedAt.In(loc).Format(rowDateLayout),
		tx.Description,
		string(tx.Category),
		tx.Amount.Float(),
		string(tx.PaymentMethod),
	}
}

// findRow returns the 1-based row whose first cell equals id, or 0.
func findRow(values [][]any, id int64) int {
	want := strconv.FormatInt(id, 10)
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == want {
			return i + 1
		}
	}
	return 0
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
