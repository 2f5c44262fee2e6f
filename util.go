package suballoc

import (
	cerrors "github.com/cockroachdb/errors"
)

// Number is any integer type CheckPow2 can be applied to.
type Number interface {
	~int | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// CheckPow2 returns a wrapped ErrPowerOfTwo if number is not a power of two.
// Zero is not a power of two.
func CheckPow2[T Number](number T, name string) error {
	if number == 0 || number&(number-1) != 0 {
		return cerrors.Wrapf(ErrPowerOfTwo, "%s is %v", name, number)
	}
	return nil
}
