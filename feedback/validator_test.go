package feedback

import (
	"errors"
	"testing"
)

func TestParseOutputSecondaryNormalization(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantNil   bool
		wantValue string
	}{
		{
			name:    "literal string null becomes nil",
			raw:     `{"analysis":"a","questions":"q","primary_type":"기타","secondary_type":"null"}`,
			wantNil: true,
		},
		{
			name:    "true null stays nil",
			raw:     `{"analysis":"a","questions":"q","primary_type":"기타","secondary_type":null}`,
			wantNil: true,
		},
		{
			name:    "literal none becomes nil",
			raw:     `{"analysis":"a","questions":"q","primary_type":"기타","secondary_type":"None"}`,
			wantNil: true,
		},
		{
			name:    "empty string becomes nil",
			raw:     `{"analysis":"a","questions":"q","primary_type":"기타","secondary_type":""}`,
			wantNil: true,
		},
		{
			name:    "field absent stays nil",
			raw:     `{"analysis":"a","questions":"q","primary_type":"기타"}`,
			wantNil: true,
		},
		{
			name:      "real secondary survives",
			raw:       `{"analysis":"a","questions":"q","primary_type":"무리한_레버리지","secondary_type":"손실회피_물타기"}`,
			wantValue: "손실회피_물타기",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ParseOutput(tt.raw, false)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantNil {
				if out.SecondaryType != nil {
					t.Errorf("expected nil secondary, got %q", *out.SecondaryType)
				}
				return
			}
			if out.SecondaryType == nil || *out.SecondaryType != tt.wantValue {
				t.Errorf("expected secondary %q, got %v", tt.wantValue, out.SecondaryType)
			}
		})
	}
}

func TestParseOutputFailures(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		strict bool
	}{
		{name: "not json", raw: "the market was scary"},
		{name: "missing primary_type", raw: `{"analysis":"a","questions":"q"}`},
		{name: "blank primary_type", raw: `{"analysis":"a","questions":"q","primary_type":"  "}`},
		{name: "strict rejects unknown primary", raw: `{"analysis":"a","questions":"q","primary_type":"YOLO"}`, strict: true},
		{name: "strict rejects unknown secondary", raw: `{"analysis":"a","questions":"q","primary_type":"기타","secondary_type":"YOLO"}`, strict: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOutput(tt.raw, tt.strict)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("expected ParseError, got %T", err)
			}
		})
	}
}

func TestParseOutputLenientPassesUnknownCategory(t *testing.T) {
	out, err := ParseOutput(`{"analysis":"a","questions":"q","primary_type":"YOLO"}`, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.PrimaryType != "YOLO" {
		t.Errorf("expected pass-through primary, got %q", out.PrimaryType)
	}
}

func TestFailureTypeValid(t *testing.T) {
	for _, ft := range []FailureType{
		FailureLeverage, FailureConcentration, FailureFOMOChase,
		FailureExternalTip, FailureBlindConviction, FailurePanicSell,
		FailureGreed, FailureAveragingDown, FailureOther,
	} {
		if !ft.Valid() {
			t.Errorf("expected %q to be valid", ft)
		}
	}
	if FailureType("YOLO").Valid() {
		t.Error("expected unknown category to be invalid")
	}
}
