package disclosure

import (
	"errors"
	"testing"
)

func TestParseDistrictField(t *testing.T) {
	cases := []struct {
		name       string
		source     SourceType
		field      string
		wantState  string
		wantNumber int
		hasNumber  bool
		wantErr    bool
	}{
		{name: "senate state code", source: SourceSenate, field: "CA", wantState: "CA"},
		{name: "senate lowercase", source: SourceSenate, field: " tx ", wantState: "TX"},
		{name: "senate with district digits", source: SourceSenate, field: "CA12", wantErr: true},
		{name: "house with district", source: SourceHouse, field: "CA12", wantState: "CA", wantNumber: 12, hasNumber: true},
		{name: "house at large", source: SourceHouse, field: "AK", wantState: "AK"},
		{name: "house district zero", source: SourceHouse, field: "DE0", wantState: "DE", wantNumber: 0, hasNumber: true},
		{name: "house garbage suffix", source: SourceHouse, field: "CAxx", wantErr: true},
		{name: "numeric state", source: SourceHouse, field: "12CA", wantErr: true},
		{name: "too short", source: SourceSenate, field: "C", wantErr: true},
		{name: "insiders have no district", source: SourceInsiders, field: "CA", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseDistrictField(tc.source, tc.field)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidDistrictField) {
					t.Fatalf("ParseDistrictField() error = %v, want ErrInvalidDistrictField", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDistrictField() error = %v", err)
			}
			if got.State != tc.wantState {
				t.Fatalf("ParseDistrictField() state = %q, want %q", got.State, tc.wantState)
			}
			if tc.hasNumber {
				if got.Number == nil || *got.Number != tc.wantNumber {
					t.Fatalf("ParseDistrictField() number = %v, want %d", got.Number, tc.wantNumber)
				}
			} else if got.Number != nil {
				t.Fatalf("ParseDistrictField() number = %d, want nil", *got.Number)
			}
		})
	}
}

func TestDistrictString(t *testing.T) {
	n := 12
	if got := (District{State: "CA", Number: &n}).String(); got != "CA-12" {
		t.Fatalf("District.String() = %q", got)
	}
	if got := (District{State: "CA"}).String(); got != "CA" {
		t.Fatalf("District.String() = %q", got)
	}
}
