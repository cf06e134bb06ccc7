package ports

// PairLocker grants exclusive locks on a pair of client ids.
//
// Implementations must acquire the two locks in a fixed global order
// (ascending id) regardless of argument order, so that two admissions
// referencing the same pair in swapped supplier/consumer roles can never
// deadlock. LockPair blocks until both locks are held and returns the release
// function; callers release via defer on every exit path.
type PairLocker interface {
	LockPair(a, b string) (release func())
}
