package league

import "github.com/cockroachdb/errors"

var (
	// ErrInput marks malformed or insufficient input: bad team lists, bad
	// week counts, encounters with missing winners or the wrong match count.
	ErrInput = errors.New("invalid input")

	// ErrDataConsistency marks encounter data whose numbers cannot all be true,
	// such as a reported score that disagrees with the individual winners.
	ErrDataConsistency = errors.New("inconsistent data")
)

// InputErrorf builds an error marked with ErrInput.
func InputErrorf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrInput)
}

// ConsistencyErrorf builds an error marked with ErrDataConsistency.
func ConsistencyErrorf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrDataConsistency)
}
