package credentials

import "testing"

func TestGenerateInviteCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateInviteCode()
		if err != nil {
			t.Fatalf("GenerateInviteCode() error = %v", err)
		}
		if len(code) != InviteCodeLength {
			t.Errorf("code length = %d, want %d", len(code), InviteCodeLength)
		}
		for _, c := range code {
			if !((c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
				t.Errorf("code %q contains invalid character %q", code, c)
			}
		}
		seen[code] = true
	}
	// 100 draws from 36^6 should essentially never all collide
	if len(seen) < 2 {
		t.Error("expected some variety in generated codes")
	}
}
