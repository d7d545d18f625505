package phase

import (
	"errors"
	"testing"
)

func TestParseTag(t *testing.T) {
	cases := []struct {
		in   string
		want Tag
	}{
		{"auth", Tag{Name: "auth"}},
		{"auth:before", Tag{Name: "auth", Anchor: AnchorBefore}},
		{"auth:after", Tag{Name: "auth", Anchor: AnchorAfter}},
		{"auth:during", Tag{Name: "auth:during"}},
		{":before", Tag{Name: ":before"}},
	}
	for _, c := range cases {
		if got := ParseTag(c.in); got != c.want {
			t.Errorf("ParseTag(%q) = %+v, want %+v", c.in, got, c.want)
		}
		if got := ParseTag(c.in).String(); got != c.in {
			t.Errorf("String() round trip: got %q, want %q", got, c.in)
		}
	}
}

func TestOrderKey(t *testing.T) {
	tbl := Default()
	cases := map[string]int{
		"initial:before": 0,
		"initial":        1,
		"initial:after":  2,
		"auth:before":    6,
		"auth":           7,
		"auth:after":     8,
		"routing":        13,
		"final:after":    20,
	}
	for tag, want := range cases {
		got, err := tbl.OrderKey(tag)
		if err != nil {
			t.Fatalf("OrderKey(%q): %v", tag, err)
		}
		if got != want {
			t.Errorf("OrderKey(%q) = %d, want %d", tag, got, want)
		}
	}
}

func TestOrderKeyStrictlyIncreasing(t *testing.T) {
	tbl := Default()
	prev := -1
	seen := map[int]string{}
	for _, n := range tbl.Names() {
		for _, tag := range []string{n + ":before", n, n + ":after"} {
			k, err := tbl.OrderKey(tag)
			if err != nil {
				t.Fatal(err)
			}
			if k <= prev {
				t.Fatalf("key for %q (%d) not greater than previous (%d)", tag, k, prev)
			}
			if other, dup := seen[k]; dup {
				t.Fatalf("key %d shared by %q and %q", k, tag, other)
			}
			seen[k] = tag
			prev = k
		}
	}
}

func TestOrderKeyUnknownPhase(t *testing.T) {
	tbl := Default()
	for _, tag := range []string{"bogus", "bogus:before", "", "auth:during"} {
		if _, err := tbl.OrderKey(tag); !errors.Is(err, ErrUnknownPhase) {
			t.Errorf("OrderKey(%q) err = %v, want ErrUnknownPhase", tag, err)
		}
	}
}

func TestNewTableRejects(t *testing.T) {
	bad := [][]string{
		nil,
		{"a", ""},
		{"a", "b", "a"},
		{"a:b"},
	}
	for _, names := range bad {
		if _, err := NewTable(names...); err == nil {
			t.Errorf("NewTable(%q) succeeded, want error", names)
		}
	}
}

func TestWithDoesNotMutate(t *testing.T) {
	base := Default()
	ext, err := base.With("teardown")
	if err != nil {
		t.Fatal(err)
	}
	if base.Has("teardown") {
		t.Fatal("With mutated the receiver")
	}
	if !ext.Has("teardown") || ext.Len() != base.Len()+1 {
		t.Fatalf("extended table missing phase: %v", ext.Names())
	}
	k, _ := ext.OrderKey("teardown")
	if k != 3*base.Len()+1 {
		t.Fatalf("teardown key = %d", k)
	}
	if _, err := base.With("auth"); err == nil {
		t.Fatal("duplicate phase accepted")
	}
}

func TestNamesIsCopy(t *testing.T) {
	tbl := Default()
	n := tbl.Names()
	n[0] = "mutated"
	if tbl.Names()[0] != "initial" {
		t.Fatal("Names exposed internal slice")
	}
}
