package money

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestParse_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    Amount
		wantErr bool
	}{
		{name: "integer", in: "5", want: 500},
		{name: "one_decimal", in: "5.5", want: 550},
		{name: "two_decimals", in: "10.15", want: 1015},
		{name: "trailing_zero_beyond_scale", in: "1.230", want: 123},
		{name: "surrounding_spaces", in: " 2.00 ", want: 200},
		{name: "negative", in: "-1.15", want: -115},
		{name: "zero", in: "0.00", want: 0},
		{name: "too_precise", in: "1.234", wantErr: true},
		{name: "empty", in: "", wantErr: true},
		{name: "garbage", in: "abc", wantErr: true},
		{name: "out_of_range", in: "100000000000000000000", wantErr: true},
		{name: "max", in: "92233720368547758.07", want: math.MaxInt64},
		{name: "just_over_max", in: "92233720368547758.08", wantErr: true},
		{name: "exponent_form", in: "1.5e2", want: 15000},
		{name: "huge_exponent", in: "1e1000000", wantErr: true},
		{name: "tiny_exponent", in: "1e-1000000", wantErr: true},
		{name: "zero_with_exponent", in: "0e1000000", want: 0},
		{name: "too_long", in: "1" + strings.Repeat("0", 100), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Fatalf("want ErrInvalidAmount, got %v (amount=%d)", err, got)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Fatalf("amount: want %d, got %d", tt.want, got)
			}
		})
	}
}

func TestAmount_String(t *testing.T) {
	t.Parallel()

	cases := map[Amount]string{
		0:    "0.00",
		5:    "0.05",
		500:  "5.00",
		1015: "10.15",
		-115: "-1.15",
	}

	for in, want := range cases {
		if got := in.String(); got != want {
			t.Fatalf("String(%d): want %q, got %q", int64(in), want, got)
		}
	}
}

func TestAmount_AddSubOverflow(t *testing.T) {
	t.Parallel()

	sum, err := Amount(250).Add(750)
	if err != nil || sum != 1000 {
		t.Fatalf("add: want 1000, got %d (err=%v)", sum, err)
	}

	diff, err := Amount(250).Sub(750)
	if err != nil || diff != -500 {
		t.Fatalf("sub: want -500, got %d (err=%v)", diff, err)
	}

	_, err = Amount(math.MaxInt64).Add(1)
	if !errors.Is(err, ErrOverflow) {
		t.Fatalf("add overflow: want ErrOverflow, got %v", err)
	}

	_, err = Amount(math.MinInt64).Sub(1)
	if !errors.Is(err, ErrOverflow) {
		t.Fatalf("sub overflow: want ErrOverflow, got %v", err)
	}
}

func TestAmount_JSON(t *testing.T) {
	t.Parallel()

	var body struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
	}

	err := json.Unmarshal([]byte(`{"a":"12.34","b":5.5}`), &body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if body.A != 1234 || body.B != 550 {
		t.Fatalf("unexpected amounts: a=%d b=%d", body.A, body.B)
	}

	out, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if string(out) != `{"a":"12.34","b":"5.50"}` {
		t.Fatalf("marshal output: %s", out)
	}

	err = json.Unmarshal([]byte(`{"a":"1.001"}`), &body)
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("want ErrInvalidAmount, got %v", err)
	}
}

func TestAmount_UnmarshalJSON_OversizedNumber(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		`{"a":1e1000000}`,
		`{"a":"1e1000000"}`,
		`{"a":"1e-1000000"}`,
	} {
		var body struct {
			A Amount `json:"a"`
		}

		err := json.Unmarshal([]byte(raw), &body)
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%s: want ErrInvalidAmount, got %v", raw, err)
		}

		if len(err.Error()) > 100 {
			t.Fatalf("%s: error message too long (%d bytes)", raw, len(err.Error()))
		}
	}
}
