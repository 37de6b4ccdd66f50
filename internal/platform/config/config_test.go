package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	kit "contestwatch/internal/platform/testkit"
)

func TestPrefixAndKey(t *testing.T) {
	api := New().Prefix("CONTEST_")
	if got := api.key("PORT"); got != "CONTEST_PORT" {
		t.Fatalf("key() = %q, want %q", got, "CONTEST_PORT")
	}
	nested := api.Prefix("YT_")
	if got := nested.key("TIMEOUT"); got != "CONTEST_YT_TIMEOUT" {
		t.Fatalf("nested key() = %q", got)
	}
}

func TestMustString(t *testing.T) {
	c := New().Prefix("APP_")
	t.Setenv("APP_NAME", "  contestwatch ")
	if got := c.MustString("NAME"); got != "contestwatch" {
		t.Fatalf("MustString = %q", got)
	}
	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestMayValues(t *testing.T) {
	c := New().Prefix("M_")
	t.Setenv("M_S", " v ")
	t.Setenv("M_I", "42")
	t.Setenv("M_I_BAD", "x")
	t.Setenv("M_B", "true")
	t.Setenv("M_B_BAD", "maybe")
	t.Setenv("M_D", "3s")
	t.Setenv("M_D_BAD", "soon")
	t.Setenv("M_D_NEG", "-1s")

	if c.MayString("S", "d") != "v" || c.MayString("NONE", "d") != "d" {
		t.Fatalf("MayString mismatch")
	}
	if c.MayInt("I", 1) != 42 || c.MayInt("I_BAD", 7) != 7 || c.MayInt("NONE", 9) != 9 {
		t.Fatalf("MayInt mismatch")
	}
	if !c.MayBool("B", false) || c.MayBool("B_BAD", false) || !c.MayBool("NONE", true) {
		t.Fatalf("MayBool mismatch")
	}
	if c.MayDuration("D", time.Second) != 3*time.Second ||
		c.MayDuration("D_BAD", time.Second) != time.Second ||
		c.MayDuration("D_NEG", time.Second) != time.Second {
		t.Fatalf("MayDuration mismatch")
	}
}

func TestMayCSV(t *testing.T) {
	c := New().Prefix("C_")
	t.Setenv("C_LIST", " a, ,b ,c ")
	got := c.MayCSV("LIST", nil)
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("MayCSV = %v", got)
	}
	t.Setenv("C_EMPTY", " , ")
	if got := c.MayCSV("EMPTY", []string{"x"}); len(got) != 1 || got[0] != "x" {
		t.Fatalf("MayCSV empty should default, got %v", got)
	}
}

func TestMayAddr(t *testing.T) {
	c := New().Prefix("A_")
	cases := map[string]string{
		"4000":           ":4000",
		":8080":          ":8080",
		"127.0.0.1:9000": "127.0.0.1:9000",
		"0":              ":4000",
		"nope":           ":4000",
	}
	for in, want := range cases {
		t.Setenv("A_PORT", in)
		if got := c.MayAddr("PORT", ":4000"); got != want {
			t.Fatalf("MayAddr(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "test.env")
	if err := os.WriteFile(p, []byte("DOTENV_ONLY=file\nDOTENV_SET=file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DOTENV_SET", "env")
	t.Cleanup(func() { _ = os.Unsetenv("DOTENV_ONLY") })

	if err := LoadDotenv(p, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotenv: %v", err)
	}
	if os.Getenv("DOTENV_ONLY") != "file" {
		t.Fatalf("file value not loaded")
	}
	if os.Getenv("DOTENV_SET") != "env" {
		t.Fatalf("existing env must win")
	}
}
