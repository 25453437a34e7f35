package roleid

import "testing"

func TestStringParseRoundTrip(t *testing.T) {
	cases := []ServerRoleId{
		New(Login, 1),
		New(Gate, 2),
		New(World, 100),
		New(Center, 0),
	}
	for _, c := range cases {
		text := c.String()
		got, err := Parse(text)
		if err != nil {
			t.Fatalf("Parse(%q): %v", text, err)
		}
		if got != c {
			t.Fatalf("round trip mismatch: want %+v, got %+v", c, got)
		}
	}
}

func TestParseRejectsUnknownRole(t *testing.T) {
	if _, err := Parse("banker-1"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "login", "login-", "-1", "gate-abc"} {
		if _, err := Parse(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}
