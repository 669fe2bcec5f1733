package pager_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/sitekit/internal/pager"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name   string
		total  int
		active int
		size   int
		want   pager.Window
	}{
		{
			name: "single page renders nothing",
			total: 1, active: 1, size: 5,
			want: pager.Window{},
		},
		{
			name: "no pages renders nothing",
			total: 0, active: 0, size: 5,
			want: pager.Window{},
		},
		{
			name: "first page",
			total: 10, active: 1, size: 3,
			want: pager.Window{
				ShowNext: true, ShowLast: true,
				PrevPage: 1, NextPage: 2,
				Pages: []int{1, 2, 3},
			},
		},
		{
			name: "shifted left near the end",
			total: 10, active: 9, size: 5,
			want: pager.Window{
				ShowFirst: true, ShowPrev: true, ShowNext: true, ShowLast: true,
				PrevPage: 8, NextPage: 10,
				Pages: []int{6, 7, 8, 9, 10},
			},
		},
		{
			name: "last page",
			total: 4, active: 4, size: 2,
			want: pager.Window{
				ShowFirst: true, ShowPrev: true,
				PrevPage: 3, NextPage: 4,
				Pages: []int{3, 4},
			},
		},
		{
			name: "size clamped to total",
			total: 3, active: 2, size: 12,
			want: pager.Window{
				ShowFirst: true, ShowPrev: true, ShowNext: true, ShowLast: true,
				PrevPage: 1, NextPage: 3,
				Pages: []int{1, 2, 3},
			},
		},
		{
			name: "zero size treated as one",
			total: 5, active: 3, size: 0,
			want: pager.Window{
				ShowFirst: true, ShowPrev: true, ShowNext: true, ShowLast: true,
				PrevPage: 2, NextPage: 4,
				Pages: []int{3},
			},
		},
		{
			name: "unresolved active page",
			total: 5, active: 0, size: 3,
			want: pager.Window{},
		},
		{
			name: "active past the end",
			total: 5, active: 6, size: 3,
			want: pager.Window{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pager.Compute(tt.total, tt.active, tt.size)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompute_WindowProperties(t *testing.T) {
	for total := 2; total <= 12; total++ {
		for active := 1; active <= total; active++ {
			for size := 1; size <= total; size++ {
				w := pager.Compute(total, active, size)
				require.Len(t, w.Pages, size, "total=%d active=%d size=%d", total, active, size)
				for i, p := range w.Pages {
					assert.GreaterOrEqual(t, p, 1)
					assert.LessOrEqual(t, p, total)
					if i > 0 {
						assert.Equal(t, w.Pages[i-1]+1, p, "pages must be contiguous")
					}
				}
				assert.Contains(t, w.Pages, active, "total=%d active=%d size=%d", total, active, size)
			}
		}
	}
}

func TestCompute_Idempotent(t *testing.T) {
	a := pager.Compute(10, 9, 5)
	b := pager.Compute(10, 9, 5)
	assert.Equal(t, a, b)
}

func TestSizers(t *testing.T) {
	assert.Equal(t, 5, pager.Fixed(5).Size(1920))

	auto := pager.Auto{ApproxButtonWidth: 90, Fallback: 5}
	assert.Equal(t, 5, auto.Size(0), "unknown width falls back")
	assert.Equal(t, 1, auto.Size(90))
	assert.Equal(t, 2, auto.Size(91))
	assert.Equal(t, 4, auto.Size(360))
	assert.Equal(t, 22, auto.Size(1920))
	assert.Equal(t, math.MaxInt/90+1, auto.Size(math.MaxInt), "huge widths do not wrap negative")
}
