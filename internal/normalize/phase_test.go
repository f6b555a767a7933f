package normalize

import "testing"

func TestNormalizePhaseRoundTrip(t *testing.T) {
	for n := 0; n <= 6; n++ {
		label := PhaseLabel(n)
		p2, ok := NormalizePhase(label)
		if !ok {
			t.Fatalf("phase %d: label %q did not round-trip", n, label)
		}
		p1, _ := NormalizePhase(n)
		if p1 != p2 {
			t.Fatalf("phase %d: round-trip mismatch %v != %v", n, p1, p2)
		}
	}
}

func TestNormalizePhaseVariants(t *testing.T) {
	cases := []struct {
		in   interface{}
		want Phase
		ok   bool
	}{
		{0, PhaseRequest, true},
		{"0", PhaseRequest, true},
		{"REQUEST", PhaseRequest, true},
		{"request", PhaseRequest, true},
		{"Negotiation", PhaseNegotiation, true},
		{6.0, PhaseExpired, true},
		{"7", PhaseUnknown, false},
		{7, PhaseUnknown, false},
		{"garbage", PhaseUnknown, false},
		{"", PhaseUnknown, false},
		{nil, PhaseUnknown, false},
		{true, PhaseUnknown, false},
	}
	for _, c := range cases {
		got, ok := NormalizePhase(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("NormalizePhase(%#v) = (%v, %v), want (%v, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}
