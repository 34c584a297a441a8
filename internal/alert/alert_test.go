package alert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPriority(t *testing.T) {
	th := Thresholds{LowStock: 30.0, Reorder: 25.0}
	cases := []struct {
		name   string
		weight float64
		auto   bool
		want   Status
	}{
		{"under reorder with auto", 24.0, true, AutoOrdering},
		{"under reorder without auto", 24.0, false, LowStock},
		{"between thresholds", 27.5, true, LowStock},
		{"between thresholds no auto", 27.5, false, LowStock},
		{"healthy", 31.0, true, Monitoring},
		{"exactly low-stock threshold", 30.0, false, Monitoring},
		{"exactly reorder threshold", 25.0, true, LowStock},
		{"zero with auto", 0, true, AutoOrdering},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.weight, tc.auto, th))
		})
	}
}
