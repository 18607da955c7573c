package pagination

import "testing"

func TestNormalize(t *testing.T) {
	n := Params{Page: 0, Limit: 0}.Normalize()
	if n.Page != 1 || n.Limit != DefaultLimit {
		t.Fatalf("unexpected defaults: %+v", n)
	}

	n = Params{Page: 3, Limit: 500}.Normalize()
	if n.Limit != MaxLimit {
		t.Fatalf("limit should clamp to %d, got %d", MaxLimit, n.Limit)
	}
	if n.Page != 3 {
		t.Fatalf("page should be preserved, got %d", n.Page)
	}
}

func TestOffset(t *testing.T) {
	if got := (Params{Page: 1, Limit: 20}).Offset(); got != 0 {
		t.Fatalf("first page offset should be 0, got %d", got)
	}
	if got := (Params{Page: 4, Limit: 10}).Offset(); got != 30 {
		t.Fatalf("expected offset 30, got %d", got)
	}
}

func TestNewEnvelope(t *testing.T) {
	env := NewEnvelope(Params{Page: 2, Limit: 10}, 25)
	if env.CurrentPage != 2 {
		t.Fatalf("expected current page 2, got %d", env.CurrentPage)
	}
	if env.TotalPages != 3 {
		t.Fatalf("expected 3 total pages, got %d", env.TotalPages)
	}
	if env.TotalCount != 25 {
		t.Fatalf("expected total count 25, got %d", env.TotalCount)
	}

	empty := NewEnvelope(Params{Page: 1, Limit: 10}, 0)
	if empty.TotalPages != 0 {
		t.Fatalf("no rows means no pages, got %d", empty.TotalPages)
	}
}
