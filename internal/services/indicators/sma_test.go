package indicators

import "testing"

func TestSMATrailingWindow(t *testing.T) {
	series := []float64{1, 2, 3, 4, 5}
	got, ok := SMA(series, 2)
	if !ok {
		t.Fatalf("expected defined SMA")
	}
	if got != 4.5 {
		t.Fatalf("expected 4.5, got %v", got)
	}
}

func TestSMAWholeSeries(t *testing.T) {
	series := []float64{2, 4, 6}
	got, ok := SMA(series, 3)
	if !ok || got != 4 {
		t.Fatalf("expected 4, got %v ok=%v", got, ok)
	}
}

func TestSMAUndefined(t *testing.T) {
	if _, ok := SMA([]float64{1, 2}, 3); ok {
		t.Fatalf("expected undefined SMA for short series")
	}
	if _, ok := SMA(nil, 1); ok {
		t.Fatalf("expected undefined SMA for empty series")
	}
	if _, ok := SMA([]float64{1}, 0); ok {
		t.Fatalf("expected undefined SMA for zero window")
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(2.5, -1, 1); got != 1 {
		t.Fatalf("expected clamp to 1, got %v", got)
	}
	if got := Clamp(-2.5, -1, 1); got != -1 {
		t.Fatalf("expected clamp to -1, got %v", got)
	}
	if got := Clamp(0.3, -1, 1); got != 0.3 {
		t.Fatalf("expected passthrough, got %v", got)
	}
}

func TestRound4(t *testing.T) {
	if got := Round4(1.23456); got != 1.2346 {
		t.Fatalf("expected 1.2346, got %v", got)
	}
	if got := Round4(170.1234); got != 170.1234 {
		t.Fatalf("expected 170.1234 unchanged, got %v", got)
	}
}
