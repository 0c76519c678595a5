package contentrange_test

import (
	"errors"
	"testing"

	"github.com/yeisme/uploadvault/pkg/contentrange"
)

// TestParse_Bounded 测试有界区间.
func TestParse_Bounded(t *testing.T) {
	r, err := contentrange.Parse("bytes 0-50/51")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if !r.Bounded || r.First != 0 || r.Last != 50 || r.Total != 51 {
		t.Errorf("unexpected range %+v", r)
	}

	if r.Length() != 51 {
		t.Errorf("Length() = %d, want 51", r.Length())
	}

	if r.String() != "bytes 0-50/51" {
		t.Errorf("String() = %q", r.String())
	}
}

// TestParse_Unbounded 测试无界区间.
func TestParse_Unbounded(t *testing.T) {
	r, err := contentrange.Parse("bytes 10-19/*")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if r.Bounded || r.First != 10 || r.Last != 19 {
		t.Errorf("unexpected range %+v", r)
	}

	if r.Length() != 10 {
		t.Errorf("Length() = %d, want 10", r.Length())
	}
}

// TestParse_Invalid 测试各种非法输入.
func TestParse_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"items 0-1/2",
		"bytes 0-1",
		"bytes 5-1/10",
		"bytes -1/10",
		"bytes 0-/10",
		"bytes a-b/10",
		"bytes 0-10/10",
		"bytes */10",
		"bytes 0-1/x",
	}

	for _, in := range inputs {
		if _, err := contentrange.Parse(in); !errors.Is(err, contentrange.ErrInvalid) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalid", in, err)
		}
	}
}
