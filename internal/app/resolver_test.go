package app

import (
	"context"
	"reflect"
	"testing"
)

func TestResolveKeys_DistinctAndSorted(t *testing.T) {
	var seen []string
	lookup := func(_ context.Context, keys []string) (map[string]int64, error) {
		seen = keys
		return map[string]int64{"bars": 1, "cafes": 2}, nil
	}

	got, err := resolveKeys(context.Background(), []string{"cafes", "bars", "", "cafes", "bars"}, lookup)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !reflect.DeepEqual(seen, []string{"bars", "cafes"}) {
		t.Fatalf("lookup keys = %v", seen)
	}
	if got["cafes"] != 2 || got["bars"] != 1 {
		t.Fatalf("unexpected mapping: %v", got)
	}
}

func TestResolveKeys_EmptySkipsLookup(t *testing.T) {
	called := false
	lookup := func(_ context.Context, keys []string) (map[string]int64, error) {
		called = true
		return nil, nil
	}

	got, err := resolveKeys(context.Background(), []string{"", ""}, lookup)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if called {
		t.Fatal("lookup must not run for an empty candidate set")
	}
	if len(got) != 0 {
		t.Fatalf("expected empty map, got %v", got)
	}
}
