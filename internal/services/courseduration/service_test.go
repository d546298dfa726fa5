package courseduration

import "testing"

func TestMinutes(t *testing.T) {
	cases := map[int64]int{
		0:    0,
		-10:  0,
		29:   0,
		30:   1,
		300:  5,
		600:  10,
		629:  10,
		630:  11,
		3599: 60,
	}
	for seconds, expected := range cases {
		if got := Minutes(seconds); got != expected {
			t.Fatalf("Minutes(%d) = %d, want %d", seconds, got, expected)
		}
	}
}
