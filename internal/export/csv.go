package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/kfarouk/breakdownr/internal/schema"
)

// ToCSV writes records to path in the canonical column order, one row per
// breakdown event.
func ToCSV(records []schema.Record, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(schema.Columns); err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.Write(rec.Row()); err != nil {
			return err
		}
	}
	return w.Error()
}
