package calls

import "testing"

func TestCallStatus_Terminal(t *testing.T) {
	cases := map[CallStatus]bool{
		CallStatusInitiated:  false,
		CallStatusInProgress: false,
		CallStatusCompleted:  true,
		CallStatusFailed:     true,
	}
	for s, want := range cases {
		if got := s.Terminal(); got != want {
			t.Fatalf("%s: expected terminal=%v, got %v", s, want, got)
		}
	}
}
