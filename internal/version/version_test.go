package version

import "testing"

func TestString(t *testing.T) {
	old := [3]string{Version, Commit, Date}
	t.Cleanup(func() { Version, Commit, Date = old[0], old[1], old[2] })

	Version, Commit, Date = "1.2.0", "abc123", "2026-10-01"
	if got, want := String(), "1.2.0 (commit abc123, built 2026-10-01)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if len(Fields()) != 3 {
		t.Errorf("Fields() = %v", Fields())
	}
}
