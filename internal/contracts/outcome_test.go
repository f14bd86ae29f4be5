package contracts

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestIncluded(t *testing.T) {
	o := Included("AAPL", map[string]float64{"score": 12.5})

	if !o.IsIncluded() {
		t.Error("Expected outcome to be included")
	}

	v, ok := o.Component("score")
	if !ok {
		t.Fatal("Expected score component to exist")
	}
	if v != 12.5 {
		t.Errorf("Component(score) = %v, want 12.5", v)
	}

	if _, ok := o.Component("missing"); ok {
		t.Error("Expected missing component lookup to fail")
	}
}

func TestExcluded(t *testing.T) {
	o := Excluded("WBD", MissingMetricReason("pe_ratio"), MissingMetricReason("dividend_yield"))

	if o.IsIncluded() {
		t.Error("Expected outcome to be excluded")
	}

	if len(o.Reasons) != 2 {
		t.Fatalf("Expected 2 reasons, got %d", len(o.Reasons))
	}

	// Reasons keep declaration order
	if o.Reasons[0] != "missing metric: pe_ratio" {
		t.Errorf("Reasons[0] = %q, want %q", o.Reasons[0], "missing metric: pe_ratio")
	}
	if o.Reasons[1] != "missing metric: dividend_yield" {
		t.Errorf("Reasons[1] = %q, want %q", o.Reasons[1], "missing metric: dividend_yield")
	}
}

func TestReasonStrings(t *testing.T) {
	if ReasonDivisionByZero != "division by zero" {
		t.Errorf("unexpected ReasonDivisionByZero: %q", ReasonDivisionByZero)
	}

	if ReasonInsufficientDividendData != "insufficient dividend data" {
		t.Errorf("unexpected ReasonInsufficientDividendData: %q", ReasonInsufficientDividendData)
	}

	got := ProviderErrorReason(errors.New("status 502"))
	if got != "provider error: status 502" {
		t.Errorf("ProviderErrorReason() = %q", got)
	}
}

func TestOutcome_JSON(t *testing.T) {
	original := Included("MSFT", map[string]float64{
		"return_on_capital": 0.31,
		"earnings_yield":    0.05,
	})

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	var decoded Outcome
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}

	if decoded.Symbol != "MSFT" {
		t.Errorf("Symbol mismatch: got %s", decoded.Symbol)
	}
	if !decoded.IsIncluded() {
		t.Error("Expected decoded outcome to stay included")
	}
	if decoded.Components["return_on_capital"] != 0.31 {
		t.Errorf("Component mismatch: %v", decoded.Components)
	}
}
