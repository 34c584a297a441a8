// Package sink appends validated telemetry records to durable storage.
package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/model"
)

// timestampLayout matches the log format consumers of the CSV expect.
const timestampLayout = "2006-01-02 15:04:05"

var header = []string{"Timestamp", "Product", "Weight_KG"}

// Recorder receives already-validated telemetry records.
type Recorder interface {
	Record(rec model.TelemetryRecord) error
}

// CSV is an append-only CSV file sink. The header row is written exactly
// once, when the file is created or empty.
type CSV struct {
	mu sync.Mutex
	f  *os.File
	w  *csv.Writer
}

// OpenCSV opens (or creates) the log file at path in append mode.
func OpenCSV(path string) (*CSV, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("sink: open %s: %w", path, err)
	}
	c := &CSV{f: f, w: csv.NewWriter(f)}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("sink: stat %s: %w", path, err)
	}
	if st.Size() == 0 {
		if err := c.w.Write(header); err != nil {
			f.Close()
			return nil, fmt.Errorf("sink: write header: %w", err)
		}
		c.w.Flush()
		if err := c.w.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("sink: flush header: %w", err)
		}
	}
	return c, nil
}

// Record appends one telemetry row and flushes it.
func (c *CSV) Record(rec model.TelemetryRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	row := []string{
		rec.Timestamp.Format(timestampLayout),
		rec.Product,
		strconv.FormatFloat(rec.Weight, 'f', 2, 64),
	}
	if err := c.w.Write(row); err != nil {
		return fmt.Errorf("sink: write row: %w", err)
	}
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return fmt.Errorf("sink: flush row: %w", err)
	}
	return nil
}

// Close flushes buffered rows and closes the file.
func (c *CSV) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		c.f.Close()
		return err
	}
	return c.f.Close()
}
