package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindow_FitsEverything(t *testing.T) {
	start, end := Window(10, 4, 3)
	assert.Equal(t, 0, start)
	assert.Equal(t, 4, end)
}

func TestWindow_SmallList(t *testing.T) {
	start, end := Window(2, 3, 0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 2, end)
}

func TestWindow_Placement(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		total     int
		selected  int
		wantStart int
	}{
		{"first item", 5, 20, 0, 0},
		{"middle", 5, 20, 9, 7},
		{"last item pins to end", 5, 20, 19, 15},
		{"second to last", 5, 20, 18, 14},
		{"one slot", 1, 3, 1, 1},
		{"size 2 of 3, last", 2, 3, 2, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			start, end := Window(tc.size, tc.total, tc.selected)
			assert.Equal(t, tc.wantStart, start)
			assert.Equal(t, tc.wantStart+tc.size, end)
		})
	}
}

func TestWindow_Bounds(t *testing.T) {
	for total := 1; total <= 40; total++ {
		for size := 1; size <= 45; size++ {
			for sel := 0; sel < total; sel++ {
				start, end := Window(size, total, sel)
				want := min(size, total)
				if end-start != want || start < 0 || end > total {
					t.Fatalf("Window(%d, %d, %d) = [%d, %d), want length %d within [0, %d)",
						size, total, sel, start, end, want, total)
				}
			}
		}
	}
}

func TestWindow_Empty(t *testing.T) {
	start, end := Window(5, 0, 0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, end)

	start, end = Window(0, 5, 2)
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, end)
}
