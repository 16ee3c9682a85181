package eventstore

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/okian/trustlens/internal/domain/model"
)

// Expected CSV columns, in order.
var csvHeader = []string{"user_id", "event_ts", "event_name", "amount", "ingestion_id"}

// importBatchSize bounds how many parsed events accumulate before a flush
// to the store.
const importBatchSize = 5000

// ImportStats summarizes one CSV import.
type ImportStats struct {
	Imported  int
	Malformed int // rows dropped for unparseable timestamp or amount
}

// ImportCSV reads events from r into the store. Malformed rows are never
// fatal: a row with an unparseable amount is dropped and tallied against its
// day's validity; a row whose timestamp cannot be parsed has no day to
// charge, so it only appears in the returned stats.
func ImportCSV(ctx context.Context, store Store, r io.Reader) (ImportStats, error) {
	var stats ImportStats

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(csvHeader)

	header, err := reader.Read()
	if err != nil {
		return stats, fmt.Errorf("read csv header: %w", err)
	}
	for i, want := range csvHeader {
		if strings.TrimSpace(header[i]) != want {
			return stats, fmt.Errorf("%w: column %d is %q, want %q", ErrBadHeader, i, header[i], want)
		}
	}

	batch := make([]model.Event, 0, importBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := store.Append(ctx, batch); err != nil {
			return fmt.Errorf("append batch: %w", err)
		}
		stats.Imported += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("read csv row: %w", err)
		}

		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(record[1]))
		if err != nil {
			// No parseable day to charge this row against.
			stats.Malformed++
			continue
		}

		e := model.Event{
			UserID:      strings.TrimSpace(record[0]),
			TS:          ts.UTC(),
			Type:        model.EventType(strings.TrimSpace(record[2])),
			IngestionID: strings.TrimSpace(record[4]),
		}
		if raw := strings.TrimSpace(record[3]); raw != "" {
			amount, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				stats.Malformed++
				if err := store.AddMalformed(ctx, ts, 1); err != nil {
					return stats, err
				}
				continue
			}
			e.Amount = amount
			e.HasAmount = true
		}

		batch = append(batch, e)
		if len(batch) >= importBatchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if err := flush(); err != nil {
		return stats, err
	}
	return stats, nil
}
