package config

import (
	"testing"
	"time"

	kit "meitanbot/internal/platform/testkit"
)

func TestPrefixAndKey(t *testing.T) {
	stream := New().Prefix("STREAM_")
	if got := stream.key("URL"); got != "STREAM_URL" {
		t.Fatalf("key() = %q, want %q", got, "STREAM_URL")
	}
	nested := stream.Prefix("RETRY_")
	if got := nested.key("SHORT"); got != "STREAM_RETRY_SHORT" {
		t.Fatalf("nested key() = %q, want %q", got, "STREAM_RETRY_SHORT")
	}
}

func TestMustString(t *testing.T) {
	c := New().Prefix("BOT_")
	t.Setenv("BOT_SCREEN_NAME", "  meitanbot ")
	if got := c.MustString("SCREEN_NAME"); got != "meitanbot" {
		t.Fatalf("MustString = %q, want %q", got, "meitanbot")
	}
	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestMustInt64(t *testing.T) {
	c := New().Prefix("BOT_")
	t.Setenv("BOT_OWNER_ID", " 246793872 ")
	if got := c.MustInt64("OWNER_ID"); got != 246793872 {
		t.Fatalf("MustInt64 = %d", got)
	}
	t.Setenv("BOT_BAD_ID", "12ab")
	kit.MustPanic(t, func() { _ = c.MustInt64("BAD_ID") })
	kit.MustPanic(t, func() { _ = c.MustInt64("NOPE") })
}

func TestMayInt64(t *testing.T) {
	c := New().Prefix("ID_")
	if got := c.MayInt64("MISSING", 323080975); got != 323080975 {
		t.Fatalf("MayInt64 default = %d", got)
	}
	t.Setenv("ID_BIG", "9007199254740993")
	if got := c.MayInt64("BIG", 0); got != 9007199254740993 {
		t.Fatalf("MayInt64 big = %d", got)
	}
	t.Setenv("ID_BAD", "x")
	if got := c.MayInt64("BAD", 5); got != 5 {
		t.Fatalf("MayInt64 bad -> default = %d", got)
	}
}

func TestMayString(t *testing.T) {
	c := New().Prefix("S_")
	if got := c.MayString("MISSING", "def"); got != "def" {
		t.Fatalf("MayString default = %q", got)
	}
	t.Setenv("S_NAME", " meitan ")
	if got := c.MayString("NAME", "x"); got != "meitan" {
		t.Fatalf("MayString value = %q", got)
	}
}

func TestMayInt(t *testing.T) {
	c := New().Prefix("I_")
	if got := c.MayInt("MISSING", 9); got != 9 {
		t.Fatalf("MayInt default = %d", got)
	}
	t.Setenv("I_OK", " 7 ")
	if got := c.MayInt("OK", 0); got != 7 {
		t.Fatalf("MayInt ok = %d", got)
	}
	t.Setenv("I_BAD", "x")
	if got := c.MayInt("BAD", 3); got != 3 {
		t.Fatalf("MayInt bad -> default = %d", got)
	}
}

func TestMayFloat64(t *testing.T) {
	c := New().Prefix("F_")
	t.Setenv("F_RATIO", "0.25")
	if got := c.MayFloat64("RATIO", 0); got != 0.25 {
		t.Fatalf("MayFloat64 = %v", got)
	}
	t.Setenv("F_BAD", "quarter")
	if got := c.MayFloat64("BAD", 1.5); got != 1.5 {
		t.Fatalf("MayFloat64 bad -> default = %v", got)
	}
}

func TestMayBool(t *testing.T) {
	c := New().Prefix("B_")
	if !c.MayBool("MISSING", true) {
		t.Fatalf("MayBool default true expected")
	}
	t.Setenv("B_T", "true")
	if !c.MayBool("T", false) {
		t.Fatalf("MayBool true expected")
	}
	t.Setenv("B_BAD", "nope")
	if c.MayBool("BAD", false) {
		t.Fatalf("MayBool bad -> default false expected")
	}
}

func TestMayDuration(t *testing.T) {
	c := New().Prefix("DUR_")
	if got := c.MayDuration("MISS", 5*time.Second); got != 5*time.Second {
		t.Fatalf("MayDuration default expected")
	}
	t.Setenv("DUR_OK", "15m")
	if got := c.MayDuration("OK", time.Second); got != 15*time.Minute {
		t.Fatalf("MayDuration ok = %v", got)
	}
	t.Setenv("DUR_BAD", "soon")
	if got := c.MayDuration("BAD", time.Minute); got != time.Minute {
		t.Fatalf("MayDuration bad -> default expected")
	}
}

func TestMayCSV(t *testing.T) {
	c := New().Prefix("CSV_")
	def := []string{"a", "b"}
	if got := c.MayCSV("MISS", def); len(got) != 2 || got[0] != "a" {
		t.Fatalf("MayCSV default mismatch: %#v", got)
	}
	t.Setenv("CSV_VALS", " 国語, 数学 , ,英語 ,, ")
	got := c.MayCSV("VALS", nil)
	want := []string{"国語", "数学", "英語"}
	if len(got) != len(want) {
		t.Fatalf("MayCSV len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("MayCSV[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	t.Setenv("CSV_EMPTY", " , , ")
	if got := c.MayCSV("EMPTY", def); len(got) != 2 {
		t.Fatalf("MayCSV all-empty -> default mismatch: %#v", got)
	}
}

func TestMayEnum(t *testing.T) {
	c := New().Prefix("E_")
	if got := c.MayEnum("MISS", "json", "json", "console"); got != "json" {
		t.Fatalf("MayEnum default = %q", got)
	}
	t.Setenv("E_FMT", "Console")
	if got := c.MayEnum("FMT", "json", "json", "console"); got != "console" {
		t.Fatalf("MayEnum allowed value = %q, want console", got)
	}
	t.Setenv("E_BAD", "xml")
	kit.MustPanic(t, func() { _ = c.MayEnum("BAD", "json", "json", "console") })
}
