package ui

import "testing"

func TestNextThemeCycles(t *testing.T) {
	names := ThemeNames()
	current := names[0]
	for i := 1; i <= len(names); i++ {
		current = NextTheme(current)
		if want := names[i%len(names)]; current != want {
			t.Fatalf("step %d: theme = %q, want %q", i, current, want)
		}
	}
	if got := NextTheme("unknown"); got != names[0] {
		t.Fatalf("NextTheme(unknown) = %q, want %q", got, names[0])
	}
}

func TestGetThemeFallsBack(t *testing.T) {
	if got := GetTheme("missing").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(missing) = %q, want Nightfox", got)
	}
	for _, name := range ThemeNames() {
		if got := GetTheme(name).Name; got != name {
			t.Fatalf("GetTheme(%q) = %q", name, got)
		}
	}
}

func TestParseTab(t *testing.T) {
	if parseTab(" Notes ") != tabNotes {
		t.Fatalf("parseTab(Notes) != notes")
	}
	if parseTab("bogus") != tabComments {
		t.Fatalf("parseTab(bogus) != comments")
	}
	if tabNotes.prefsName() != "notes" {
		t.Fatalf("prefsName = %q", tabNotes.prefsName())
	}
}
