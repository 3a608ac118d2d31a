package calendar

import "iter"

// Offsets yields the dense integer sequence 0..n-1. The sequence is finite and
// can be ranged over any number of times; n <= 0 yields nothing.
func Offsets(n int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 0; i < n; i++ {
			if !yield(i) {
				return
			}
		}
	}
}
