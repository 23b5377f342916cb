package session

import (
	"regexp"
	"testing"
	"time"
)

var usNumberRe = regexp.MustCompile(`^\+1 \d{3}-\d{3}-\d{4}$`)

func TestUSNumber_Format(t *testing.T) {
	for i := 0; i < 100; i++ {
		n := USNumber()
		if !usNumberRe.MatchString(n) {
			t.Fatalf("unexpected number format %q", n)
		}
	}
}

func TestUniformDelay_Bounds(t *testing.T) {
	d := UniformDelay(5*time.Second, 11*time.Second)
	for i := 0; i < 1000; i++ {
		v := d()
		if v < 5*time.Second || v >= 11*time.Second {
			t.Fatalf("delay %v out of [5s,11s)", v)
		}
	}
}

func TestUniformDelay_DegenerateRange(t *testing.T) {
	d := UniformDelay(2*time.Second, 2*time.Second)
	if v := d(); v < 2*time.Second {
		t.Fatalf("expected at least min delay, got %v", v)
	}
}
