package aggregate

import (
	"testing"

	"github.com/openpredict/marketd/internal/domain"
)

func TestDedupeHistoryFirstOccurrenceWins(t *testing.T) {
	in := []domain.PriceHistoryPoint{
		{Timestamp: 200, Price: 0.7},
		{Timestamp: 100, Price: 0.5},
		{Timestamp: 100, Price: 0.6},
	}

	got := DedupeHistory(in)

	want := []domain.PriceHistoryPoint{
		{Timestamp: 100, Price: 0.5},
		{Timestamp: 200, Price: 0.7},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("point[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDedupeHistoryAscending(t *testing.T) {
	in := []domain.PriceHistoryPoint{
		{Timestamp: 300, Price: 0.3},
		{Timestamp: 100, Price: 0.1},
		{Timestamp: 200, Price: 0.2},
	}
	got := DedupeHistory(in)
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp <= got[i-1].Timestamp {
			t.Fatalf("series not strictly ascending: %v", got)
		}
	}
}

func TestDedupeHistoryEmpty(t *testing.T) {
	if got := DedupeHistory(nil); got == nil || len(got) != 0 {
		t.Errorf("want empty non-nil slice, got %#v", got)
	}
}

func TestDedupePnLFirstOccurrenceWins(t *testing.T) {
	in := []domain.PnLPoint{
		{Timestamp: 50, Value: 9},
		{Timestamp: 10, Value: 1},
		{Timestamp: 10, Value: 2},
		{Timestamp: 50, Value: 8},
	}
	got := DedupePnL(in)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0] != (domain.PnLPoint{Timestamp: 10, Value: 1}) {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1] != (domain.PnLPoint{Timestamp: 50, Value: 9}) {
		t.Errorf("got[1] = %+v", got[1])
	}
}
