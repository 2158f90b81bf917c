package envutil

import (
	"testing"
	"time"
)

func TestIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("NISHAD_TEST_INT", "abc")
	if got := Int("NISHAD_TEST_INT", 7, nil); got != 7 {
		t.Fatalf("Int: want=7 got=%d", got)
	}
	t.Setenv("NISHAD_TEST_INT", " 42 ")
	if got := Int("NISHAD_TEST_INT", 7, nil); got != 42 {
		t.Fatalf("Int: want=42 got=%d", got)
	}
}

func TestSecondsAndList(t *testing.T) {
	t.Setenv("NISHAD_TEST_SECS", "0")
	if got := Seconds("NISHAD_TEST_SECS", 10*time.Second, nil); got != 10*time.Second {
		t.Fatalf("Seconds: want=10s got=%s", got)
	}
	t.Setenv("NISHAD_TEST_LIST", "a, ,b,")
	got := List("NISHAD_TEST_LIST", nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("List: unexpected %v", got)
	}
}
