package sink

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/model"
)

func TestCSVHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory_log.csv")
	c, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ts := time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC)
	if err := c.Record(model.TelemetryRecord{Timestamp: ts, Product: "Apples", Weight: 33.5}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if lines[0] != "Timestamp,Product,Weight_KG" {
		t.Fatalf("header: %q", lines[0])
	}
	if lines[1] != "2026-08-31 09:30:00,Apples,33.50" {
		t.Fatalf("row: %q", lines[1])
	}
}

func TestCSVHeaderWrittenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory_log.csv")
	for i := 0; i < 2; i++ {
		c, err := OpenCSV(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		if err := c.Record(model.TelemetryRecord{Timestamp: time.Now(), Product: "Kale", Weight: 1}); err != nil {
			t.Fatalf("record #%d: %v", i, err)
		}
		if err := c.Close(); err != nil {
			t.Fatalf("close #%d: %v", i, err)
		}
	}
	b, _ := os.ReadFile(path)
	if got := strings.Count(string(b), "Timestamp,Product,Weight_KG"); got != 1 {
		t.Fatalf("header written %d times", got)
	}
	if lines := strings.Split(strings.TrimSpace(string(b)), "\n"); len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
}
