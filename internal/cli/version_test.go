package cli

import "testing"

func TestVersionLine(t *testing.T) {
	restore := func(v, c, d string) func() {
		return func() { Version, Commit, BuildDate = v, c, d }
	}(Version, Commit, BuildDate)
	defer restore()

	cases := []struct {
		version, commit, date string
		want                  string
	}{
		{"dev", "", "", "chime dev"},
		{"1.2.0", "abc1234", "", "chime 1.2.0 (abc1234)"},
		{"1.2.0", "abc1234", "2026-08-30", "chime 1.2.0 (abc1234, 2026-08-30)"},
	}
	for _, tc := range cases {
		Version, Commit, BuildDate = tc.version, tc.commit, tc.date
		if got := versionLine(); got != tc.want {
			t.Errorf("versionLine() = %q, want %q", got, tc.want)
		}
	}
}
