package model

import (
	"math"
	"testing"
	"time"
)

func days(n int) []time.Time {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = base.AddDate(0, 0, i)
	}
	return out
}

func TestNewPriceTable_RejectsUnorderedIndex(t *testing.T) {
	idx := days(3)
	idx[1], idx[2] = idx[2], idx[1]
	if _, err := NewPriceTable(idx); err == nil {
		t.Fatal("expected error for unordered index")
	}

	dup := days(2)
	dup[1] = dup[0]
	if _, err := NewPriceTable(dup); err == nil {
		t.Fatal("expected error for duplicate index entry")
	}
}

func TestSetColumn_LengthAndOrder(t *testing.T) {
	tbl, err := NewPriceTable(days(2))
	if err != nil {
		t.Fatalf("NewPriceTable: %v", err)
	}
	if err := tbl.SetColumn("Close", []float64{1}); err == nil {
		t.Error("expected length mismatch error")
	}
	_ = tbl.SetColumn("Close", []float64{1, 2})
	_ = tbl.SetColumn("Open", []float64{1, 2})
	_ = tbl.SetColumn("Close", []float64{3, 4})

	cols := tbl.Columns()
	if len(cols) != 2 || cols[0] != "Close" || cols[1] != "Open" {
		t.Errorf("expected [Close Open], got %v", cols)
	}
	v, _ := tbl.Column("Close")
	if v[0] != 3 {
		t.Errorf("expected replaced value 3, got %v", v[0])
	}
	if tbl.Has("") {
		t.Error("empty column name must never be present")
	}
}

func TestCopy_IsIndependent(t *testing.T) {
	tbl, _ := NewPriceTable(days(2))
	_ = tbl.SetColumn("Close", []float64{1, 2})
	cp := tbl.Copy()
	_ = cp.SetColumn("Close", []float64{5, 6})

	v, _ := tbl.Column("Close")
	if v[0] != 1 {
		t.Errorf("original changed after copy mutation: %v", v)
	}
}

func TestJoin_FillsMissingWithNaN(t *testing.T) {
	idx := days(3)
	left, _ := NewPriceTable(idx)
	_ = left.SetColumn("Close", []float64{1, 2, 3})

	right, _ := NewPriceTable(idx[1:])
	_ = right.SetColumn("SMA(2)", []float64{1.5, 2.5})
	_ = right.SetColumn("Close", []float64{9, 9})

	j := left.Join(right)
	if j.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", j.Len())
	}
	sma, ok := j.Column("SMA(2)")
	if !ok {
		t.Fatal("expected joined column")
	}
	if !math.IsNaN(sma[0]) || sma[1] != 1.5 || sma[2] != 2.5 {
		t.Errorf("unexpected joined values %v", sma)
	}
	cl, _ := j.Column("Close")
	if cl[0] != 1 {
		t.Errorf("existing column must be kept, got %v", cl)
	}
}

func TestTableFromBars(t *testing.T) {
	idx := days(2)
	bars := []OHLCV{
		{Time: idx[0], Open: 10, High: 12, Low: 9, Close: 11, AdjClose: 11, Volume: 1000},
		{Time: idx[1], Open: 11, High: 12, Low: 10, Close: 10, AdjClose: 10, Volume: 1500},
	}
	tbl, err := TableFromBars(bars, BarColumns{Open: "Open", Close: "Close", Volume: "Volume"})
	if err != nil {
		t.Fatalf("TableFromBars: %v", err)
	}
	if tbl.Has("High") {
		t.Error("unnamed field must be skipped")
	}
	vol, _ := tbl.Column("Volume")
	if vol[1] != 1500 {
		t.Errorf("expected volume 1500, got %v", vol[1])
	}
}
