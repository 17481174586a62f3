package rangeparse

import (
	"fmt"
	"testing"
)

func TestParseUnidirectional(t *testing.T) {
	cases := []struct {
		in    string
		op    Op
		value float64
	}{
		{">=600", GTE, 600},
		{">600", GT, 600},
		{"<=600", LTE, 600},
		{"<600", LT, 600},
		{"  >= 550.5 ", GTE, 550.5},
		{"=>12", GTE, 12},
		{"=<12", LTE, 12},
		{"<-3", LT, -3},
		{"x > 1e3", GT, 1000},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			q, ok := Parse(tc.in)
			if !ok {
				t.Fatalf("expected parse to succeed")
			}
			if q.Mode != Unidirectional {
				t.Fatalf("mode: got=%s", q.Mode)
			}
			bounds := q.Bounds()
			if len(bounds) != 1 {
				t.Fatalf("expected one bound, got %d", len(bounds))
			}
			if bounds[0].Op != tc.op || bounds[0].Value != tc.value {
				t.Fatalf("bound: got=%+v want op=%s value=%g", bounds[0], tc.op, tc.value)
			}
			if tc.op.IsLower() && q.High != nil {
				t.Fatalf("lower bound query must not carry an upper bound")
			}
			if !tc.op.IsLower() && q.Low != nil {
				t.Fatalf("upper bound query must not carry a lower bound")
			}
		})
	}
}

func TestParseUnidirectionalProperty(t *testing.T) {
	for _, op := range []Op{GTE, GT, LTE, LT} {
		for _, v := range []float64{0, 1, -2.5, 550, 1234.125} {
			in := fmt.Sprintf("%s%g", op, v)
			q, ok := Parse(in)
			if !ok || q.Mode != Unidirectional {
				t.Fatalf("%q: expected unidirectional", in)
			}
			b := q.Bounds()
			if len(b) != 1 || b[0].Op != op || b[0].Value != v {
				t.Fatalf("%q: got %+v", in, b)
			}
		}
	}
}

func TestParseShorthand(t *testing.T) {
	pairs := [][2]float64{{550, 600}, {0, 0}, {1.5, 2.25}, {-10, 5}, {100, 1e4}}
	for _, p := range pairs {
		in := fmt.Sprintf("%g-%g", p[0], p[1])
		q, ok := Parse(in)
		if !ok {
			t.Fatalf("%q: expected parse", in)
		}
		if q.Mode != Bidirectional {
			t.Fatalf("%q: mode=%s", in, q.Mode)
		}
		if q.Low == nil || q.Low.Op != GTE || q.Low.Value != p[0] {
			t.Fatalf("%q: low=%+v", in, q.Low)
		}
		if q.High == nil || q.High.Op != LTE || q.High.Value != p[1] {
			t.Fatalf("%q: high=%+v", in, q.High)
		}
	}

	q, ok := Parse("550 - 600")
	if !ok || q.String() != ">=550 and <=600" {
		t.Fatalf("spaced shorthand: ok=%v q=%s", ok, q)
	}
}

func TestParseBidirectional(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"<=600 and >=550", ">=550 and <=600"},
		{">=550 and <=600", ">=550 and <=600"},
		{">550 & <600", ">550 and <600"},
		{">550&&<600", ">550 and <600"},
		{">550, <600", ">550 and <600"},
		{"x >= 550; x < 600", ">=550 and <600"},
		{"550<=x<=600", ">=550 and <=600"},
		{"550 < x <= 600", ">550 and <=600"},
		{"600 >= x > 550", ">550 and <=600"},
		{"<=600 AND >=550", ">=550 and <=600"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			q, ok := Parse(tc.in)
			if !ok {
				t.Fatalf("expected parse to succeed")
			}
			if q.Mode != Bidirectional {
				t.Fatalf("mode: got=%s", q.Mode)
			}
			if got := q.String(); got != tc.want {
				t.Fatalf("got=%q want=%q", got, tc.want)
			}
		})
	}
}

func TestOperatorsTakePrecedenceOverShorthand(t *testing.T) {
	q, ok := Parse(">=5")
	if !ok || q.Mode != Unidirectional {
		t.Fatalf("expected unidirectional")
	}
	if _, ok := Parse(">=5-10"); ok {
		t.Fatalf("operator text with trailing shorthand must not parse")
	}
}

func TestParseRejects(t *testing.T) {
	for _, in := range []string{
		"",
		"   ",
		"garbage",
		"600",
		"abc-def",
		">=",
		">= abc",
		">=5 and >=6",
		"<5 <6",
		">1 <2 <3",
		">=5 or <=6",
		"5-",
		"-",
		"550-600-700",
		">=1e999",
	} {
		q, ok := Parse(in)
		if ok {
			t.Fatalf("%q: expected empty result, got %s", in, q)
		}
		if q.Low != nil || q.High != nil {
			t.Fatalf("%q: empty result must carry no bounds", in)
		}
	}
}

func TestParseDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		a, _ := Parse("<=600 and >=550")
		b, _ := Parse("<=600 and >=550")
		if a.String() != b.String() {
			t.Fatalf("non-deterministic: %s vs %s", a, b)
		}
	}
}

func TestQueryContains(t *testing.T) {
	q, _ := Parse("550<x<=600")
	for v, want := range map[float64]bool{550: false, 550.1: true, 600: true, 600.1: false} {
		if got := q.Contains(v); got != want {
			t.Fatalf("Contains(%g)=%v want %v", v, got, want)
		}
	}
}
