package config

import (
	"context"
	"errors"
	"testing"
)

func TestAlwaysAdvanceBy(t *testing.T) {
	t.Parallel()

	advance := AlwaysAdvanceBy(4)
	tests := []struct {
		name      string
		begin     int
		completed bool
		want      int
	}{
		{name: "completed run", begin: 0, completed: true, want: 4},
		{name: "run that hit the end still advances", begin: 8, completed: false, want: 12},
	}
	for _, tt := range tests {
		if got := advance(tt.begin, tt.completed); got != tt.want {
			t.Errorf("%s: advance(%d) = %d, want %d", tt.name, tt.begin, got, tt.want)
		}
	}
}

func TestStoreProgress(t *testing.T) {
	t.Parallel()

	t.Run("writes beginLine", func(t *testing.T) {
		t.Parallel()

		store := mapStore{}
		if err := NewStoreProgress(store).SaveBeginLine(context.Background(), 4); err != nil {
			t.Fatalf("SaveBeginLine() error = %v", err)
		}
		if store[KeyBeginLine] != 4 {
			t.Errorf("beginLine = %v, want 4", store[KeyBeginLine])
		}
	})

	t.Run("canceled context writes nothing", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		store := mapStore{}
		err := NewStoreProgress(store).SaveBeginLine(ctx, 4)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("SaveBeginLine() error = %v, want context.Canceled", err)
		}
		if _, ok := store[KeyBeginLine]; ok {
			t.Error("beginLine written despite canceled context")
		}
	})
}
