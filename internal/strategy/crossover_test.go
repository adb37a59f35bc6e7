package strategy

import (
	"testing"

	"SectorPulse/internal/model"
)

func TestCrossover_AllCases(t *testing.T) {
	tests := []struct {
		name  string
		short model.Num
		long  model.Num
		want  model.Signal
	}{
		{"short above long", model.Some(105), model.Some(100), model.SignalBuy},
		{"short below long", model.Some(95), model.Some(100), model.SignalSell},
		{"equal is sell", model.Some(100), model.Some(100), model.SignalSell},
		{"short missing", model.None(), model.Some(100), model.SignalUnknown},
		{"long missing", model.Some(100), model.None(), model.SignalUnknown},
		{"both missing", model.None(), model.None(), model.SignalUnknown},
	}
	for _, tt := range tests {
		if got := Crossover(tt.short, tt.long); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.want, got)
		}
	}
}

func TestCountSignals(t *testing.T) {
	records := []model.SymbolRecord{
		{Symbol: "A", Signal: model.SignalBuy},
		{Symbol: "B", Signal: model.SignalBuy},
		{Symbol: "C", Signal: model.SignalSell},
		{Symbol: "D"},
	}
	counts := CountSignals(records)
	if counts[model.SignalBuy] != 2 {
		t.Errorf("expected 2 buys, got %d", counts[model.SignalBuy])
	}
	if counts[model.SignalSell] != 1 {
		t.Errorf("expected 1 sell, got %d", counts[model.SignalSell])
	}
	if counts[model.SignalUnknown] != 1 {
		t.Errorf("expected 1 unknown, got %d", counts[model.SignalUnknown])
	}
}
