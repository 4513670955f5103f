package bjkst

// Bit manipulation functions

const all1s uint64 = 1<<64 - 1

// maxLevel is the highest meaningful level: at 64 only the all-zero fingerprint is retained.
const maxLevel uint8 = 64

// Return a bitmask containing ones from position startPos to endPos, inclusive.
// startPos and endPos are 0-indexed so they should be in [0,63].
// startPos should be less than or equal to endPos.
func onesFromTo(startPos, endPos uint) uint64 {
	// Generate two overlapping sequences of 1s, and keep the overlap.
	highOrderOnes := all1s << startPos
	lowOrderOnes := all1s >> (64 - endPos - 1)
	result := highOrderOnes & lowOrderOnes
	return result
}

// levelMask returns the low-order bits that must all be zero for a fingerprint to be retained
// at level.
func levelMask(level uint8) uint64 {
	if level == 0 {
		return 0
	}
	if level >= maxLevel {
		return all1s
	}
	return onesFromTo(0, uint(level)-1)
}

// retained reports whether fingerprint f has at least level trailing zero bits. Half of all
// fingerprints pass at level 1, a quarter at level 2, and so on.
func retained(f uint64, level uint8) bool {
	return f&levelMask(level) == 0
}
