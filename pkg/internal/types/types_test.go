package types_test

import (
	"testing"

	"github.com/yeisme/clouddrive/pkg/internal/types"
)

func TestNewPagination(t *testing.T) {
	cases := []struct {
		name             string
		page, limit      int
		total            int64
		pages            int
		hasNext, hasPrev bool
	}{
		{"empty", 1, 20, 0, 0, false, false},
		{"single page", 1, 20, 5, 1, false, false},
		{"exact multiple", 2, 10, 20, 2, false, true},
		{"middle", 2, 2, 5, 3, true, true},
		{"beyond last", 9, 2, 5, 3, false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := types.NewPagination(tc.page, tc.limit, tc.total)
			if p.TotalPages != tc.pages || p.HasNext != tc.hasNext || p.HasPrev != tc.hasPrev {
				t.Errorf("got %+v", p)
			}

			if p.CurrentPage != tc.page || p.Limit != tc.limit || p.TotalItems != tc.total {
				t.Errorf("echoed fields wrong: %+v", p)
			}
		})
	}
}
