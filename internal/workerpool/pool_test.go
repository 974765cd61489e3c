package workerpool

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestRunExecutesEveryItem(t *testing.T) {
	p := New(2)
	items := []int{1, 2, 3, 4, 5}

	var sum int64
	errs := Run(p, items, func(n int) error {
		atomic.AddInt64(&sum, int64(n))
		return nil
	})

	for i, err := range errs {
		if err != nil {
			t.Errorf("item %d returned error: %v", i, err)
		}
	}
	if sum != 15 {
		t.Errorf("sum = %d, want 15", sum)
	}
}

func TestRunCapturesPerItemErrors(t *testing.T) {
	p := New(4)
	items := []int{1, 2, 3}
	boom := errors.New("boom")

	errs := Run(p, items, func(n int) error {
		if n == 2 {
			return boom
		}
		return nil
	})

	if errs[0] != nil || errs[2] != nil {
		t.Errorf("errs = %v, want only index 1 set", errs)
	}
	if errs[1] != boom {
		t.Errorf("errs[1] = %v, want boom", errs[1])
	}
}

func TestNewDefaultsLimitWhenNonPositive(t *testing.T) {
	p := New(0)
	if cap(p.sem) <= 0 {
		t.Errorf("pool concurrency limit = %d, want > 0", cap(p.sem))
	}
}
