package bjkst

import "testing"

func TestOnesTo(t *testing.T) {
	testCases := []struct {
		startPos, endPos uint
		expectResult     uint64
	}{
		{0, 0, 1},
		{63, 63, 1 << 63},
		{2, 4, 4 + 8 + 16},
		{56, 63, 0xFF00000000000000},
		{0, 63, all1s},
	}

	for i, testCase := range testCases {
		actualResult := onesFromTo(testCase.startPos, testCase.endPos)
		if testCase.expectResult != actualResult {
			t.Errorf("Case %d actual result was %v", i, actualResult)
		}
	}
}

func TestLevelMask(t *testing.T) {
	testCases := []struct {
		level        uint8
		expectResult uint64
	}{
		{0, 0},
		{1, 1},
		{4, 0xF},
		{63, 1<<63 - 1},
		{64, all1s},
		{200, all1s},
	}

	for i, testCase := range testCases {
		actualResult := levelMask(testCase.level)
		if testCase.expectResult != actualResult {
			t.Errorf("Case %d actual result was %x", i, actualResult)
		}
	}
}

func TestRetained(t *testing.T) {
	testCases := []struct {
		f            uint64
		level        uint8
		expectResult bool
	}{
		{1, 0, true},
		{1, 1, false},
		{2, 1, true},
		{2, 2, false},
		{0xF0, 4, true},
		{0xF0, 5, false},
		{1 << 63, 63, true},
		{1 << 63, 64, false},
		{0, 64, true},
	}

	for i, testCase := range testCases {
		actualResult := retained(testCase.f, testCase.level)
		if testCase.expectResult != actualResult {
			t.Errorf("Case %d actual result was %v", i, actualResult)
		}
	}
}
