package vcode

import (
	"sync"
	"testing"
)

func TestNilAccumulatorIsNoop(t *testing.T) {
	t.Parallel()

	var a *Accumulator

	a.AddInput([]byte("ignored"))

	if a.Sum() != 0 {
		t.Errorf("nil Sum = %d, want 0", a.Sum())
	}

	if a.Inputs() != 0 {
		t.Errorf("nil Inputs = %d, want 0", a.Inputs())
	}
}

func TestSumDeterministic(t *testing.T) {
	t.Parallel()

	a := New()
	b := New()

	a.AddInput([]byte("one"))
	a.AddInput([]byte("two"))
	b.AddInput([]byte("one"))
	b.AddInput([]byte("two"))

	if a.Sum() != b.Sum() {
		t.Error("same inputs produced different codes")
	}

	if a.Inputs() != 6 {
		t.Errorf("Inputs = %d, want 6", a.Inputs())
	}
}

func TestSumOrderSensitive(t *testing.T) {
	t.Parallel()

	a := New()
	b := New()

	a.AddInput([]byte("one"))
	a.AddInput([]byte("two"))
	b.AddInput([]byte("two"))
	b.AddInput([]byte("one"))

	if a.Sum() == b.Sum() {
		t.Error("reordered inputs produced the same code")
	}
}

func TestConcurrentAddInput(t *testing.T) {
	t.Parallel()

	a := New()

	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for range 100 {
				a.AddInput([]byte{1, 2, 3, 4})
			}
		}()
	}

	wg.Wait()

	if a.Inputs() != 8*100*4 {
		t.Errorf("Inputs = %d, want %d", a.Inputs(), 8*100*4)
	}
}
