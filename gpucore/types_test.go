package gpucore

import (
	"testing"

	"github.com/gogpu/gpucontext"
)

type negativeScale struct{ gpucontext.NullWindowProvider }

func (negativeScale) ScaleFactor() float64 { return -2 }

func TestPhysicalSize(t *testing.T) {
	tests := []struct {
		name         string
		wp           gpucontext.WindowProvider
		wantW, wantH int
	}{
		{"hidpi", gpucontext.NullWindowProvider{W: 300, H: 200, SF: 2}, 600, 400},
		{"fractional rounds", gpucontext.NullWindowProvider{W: 101, H: 51, SF: 1.5}, 152, 77},
		{"unset scale", gpucontext.NullWindowProvider{W: 600, H: 400}, 600, 400},
		{"negative scale", negativeScale{gpucontext.NullWindowProvider{W: 7, H: 9}}, 7, 9},
		{"empty", gpucontext.NullWindowProvider{SF: 2}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w, h := PhysicalSize(tt.wp); w != tt.wantW || h != tt.wantH {
				t.Errorf("PhysicalSize() = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}
