// Package alert classifies stock weights into status tiers.
package alert

// Status is the alert tier derived from a product's current weight.
type Status string

const (
	// Monitoring means stock is healthy.
	Monitoring Status = "monitoring"
	// LowStock means weight fell under the low-stock threshold.
	LowStock Status = "low_stock"
	// AutoOrdering means weight fell under the reorder threshold while
	// auto-reorder is enabled.
	AutoOrdering Status = "auto_ordering"
)

// Thresholds holds the two weight cut-offs. Reorder must sit strictly below
// LowStock; config validation enforces that.
type Thresholds struct {
	LowStock float64
	Reorder  float64
}

// Classify maps a weight to its status tier. The reorder band is checked
// first: the bands overlap, and under the reorder threshold the auto-mode
// flag decides between AutoOrdering and plain LowStock.
func Classify(weight float64, autoMode bool, th Thresholds) Status {
	switch {
	case weight < th.Reorder && autoMode:
		return AutoOrdering
	case weight < th.LowStock:
		return LowStock
	default:
		return Monitoring
	}
}
