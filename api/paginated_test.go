package api

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPageCount(t *testing.T) {
	cases := []struct {
		total, pageSize, want int
	}{
		{total: 0, pageSize: 10, want: 1},
		{total: 1, pageSize: 10, want: 1},
		{total: 10, pageSize: 10, want: 1},
		{total: 11, pageSize: 10, want: 2},
		{total: 100, pageSize: 25, want: 4},
		{total: 101, pageSize: 25, want: 5},
		{total: 5, pageSize: 0, want: 1},
		{total: -3, pageSize: 10, want: 1},
	}
	for _, tc := range cases {
		if got := PageCount(tc.total, tc.pageSize); got != tc.want {
			t.Errorf("PageCount(%d, %d) = %d, want %d", tc.total, tc.pageSize, got, tc.want)
		}
	}
}

func TestNewPaginatedDerivesTotalPages(t *testing.T) {
	p := NewPaginated([]string{"a", "b"}, 1, 2, 5)
	if p.TotalPages != 3 {
		t.Errorf("expected 3 total pages, got %d", p.TotalPages)
	}

	empty := NewPaginated([]string(nil), 1, 10, 0)
	if empty.TotalPages != 1 {
		t.Errorf("empty collection must report one page, got %d", empty.TotalPages)
	}
}

func TestPaginatedUnmarshalShapes(t *testing.T) {
	want := Paginated[string]{
		Data:       []string{"x", "y"},
		Page:       2,
		PageSize:   2,
		Total:      5,
		TotalPages: 3,
	}

	cases := map[string]string{
		"flat":   `{"data":["x","y"],"page":2,"pageSize":2,"total":5,"totalPages":3}`,
		"nested": `{"data":["x","y"],"pagination":{"page":2,"pageSize":2,"total":5,"totalPages":3}}`,
		"items":  `{"items":["x","y"],"page":2,"pageSize":2,"total":5,"totalPages":3}`,
		// totalPages omitted; must be derived from total and pageSize.
		"derived": `{"data":["x","y"],"page":2,"pageSize":2,"total":5}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			var got Paginated[string]
			if err := json.Unmarshal([]byte(raw), &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("page mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
