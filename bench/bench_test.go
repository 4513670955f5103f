package bench

import (
	"math/rand"
	"strconv"
	"testing"

	axiom "github.com/axiomhq/hyperloglog"
	"github.com/cespare/xxhash/v2"
	clark "github.com/clarkduvall/hyperloglog"
	"github.com/lytics/bjkst"
)

// Values inserted into every sketch, so the benchmarks compare the same work.
func randStr(n int) string {
	return strconv.FormatUint(uint64(rand.Uint32()), 10) + " " + strconv.Itoa(n)
}

func hash64(s string) *xxhash.Digest {
	h := xxhash.New()
	_, _ = h.WriteString(s)
	return h
}

func BenchmarkBJKST(b *testing.B) {
	b.ReportAllocs()
	s := bjkst.MustNew(14)
	for i := 0; i < b.N; i++ {
		_ = s.Insert(randStr(i))
		s.Cardinality()
	}
}

func BenchmarkBJKSTFingerprint(b *testing.B) {
	b.ReportAllocs()
	s := bjkst.MustNew(14)
	for i := 0; i < b.N; i++ {
		s.InsertFingerprint(hash64(randStr(i)).Sum64())
		s.Cardinality()
	}
}

func BenchmarkBJKSTMerge(b *testing.B) {
	x := bjkst.MustNew(14)
	y := bjkst.MustNew(14)
	for i := 0; i < 1<<16; i++ {
		_ = x.Insert(i)
		_ = y.Insert(-i)
	}
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := bjkst.Merge(x, y); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBJKSTMarshal(b *testing.B) {
	s := bjkst.MustNew(14)
	for i := 0; i < 1<<16; i++ {
		_ = s.Insert(i)
	}
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf, err := s.MarshalBinary()
		if err != nil {
			b.Fatal(err)
		}
		if _, err := bjkst.Deserialize(buf); err != nil {
			b.Fatal(err)
		}
	}
}

// https://github.com/clarkduvall/hyperloglog
func BenchmarkClarkDuvall(b *testing.B) {
	b.ReportAllocs()
	h, _ := clark.NewPlus(14)
	for i := 0; i < b.N; i++ {
		h.Add(hash64(randStr(i)))
		h.Count()
	}
}

// https://github.com/axiomhq/hyperloglog
func BenchmarkAxiomHQ(b *testing.B) {
	b.ReportAllocs()
	h := axiom.New14()
	for i := 0; i < b.N; i++ {
		h.Insert([]byte(randStr(i)))
		h.Estimate()
	}
}

// Relative error of each estimator over the same input, for comparison with the benchmarks.
func TestRelativeError(t *testing.T) {
	const n = 200000
	s := bjkst.MustNew(14)
	c, err := clark.NewPlus(14)
	if err != nil {
		t.Fatal(err)
	}
	a := axiom.New14()
	for i := 0; i < n; i++ {
		v := strconv.Itoa(i)
		if err := s.Insert(v); err != nil {
			t.Fatal(err)
		}
		c.Add(hash64(v))
		a.Insert([]byte(v))
	}
	for name, est := range map[string]uint64{
		"bjkst":       s.Cardinality(),
		"clarkduvall": c.Count(),
		"axiomhq":     a.Estimate(),
	} {
		rel := (float64(est) - n) / n
		t.Logf("%-12s estimate %d relative error %+.4f", name, est, rel)
		if rel > 0.05 || rel < -0.05 {
			t.Errorf("%s: relative error %v", name, rel)
		}
	}
}
