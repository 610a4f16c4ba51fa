package engine

import "math"

// Checked uint64 arithmetic. Every helper returns ErrNumericalOverflow
// instead of wrapping; callers abort the whole operation on error.

func checkedMul(a, b uint64) (uint64, error) {
	if a != 0 && b > math.MaxUint64/a {
		return 0, ErrNumericalOverflow
	}
	return a * b, nil
}

func checkedDiv(a, b uint64) (uint64, error) {
	if b == 0 {
		return 0, ErrNumericalOverflow
	}
	return a / b, nil
}

func checkedAdd(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrNumericalOverflow
	}
	return a + b, nil
}

func checkedSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrNumericalOverflow
	}
	return a - b, nil
}
