// Package bjkst is a Go implementation of the BJKST distinct-elements sketch from "Counting
// distinct elements in a data stream" by Bar-Yossef, Jayram, Kumar, Sivakumar and Trevisan, in
// the bounded hash-set form used by ClickHouse's uniq aggregate. Given a stream of input values,
// it estimates how many distinct values the stream contains, using memory bounded by the chosen
// precision.
//
// Every value is reduced to a 64-bit fingerprint with a keyed SipHash. The sketch keeps the set
// of fingerprints that have at least L trailing zero bits, where L is the current level. When
// the set outgrows its capacity of 2^precision fingerprints the level goes up by one and the
// fingerprints that no longer qualify are evicted, halving the sample in expectation. The
// estimate is |sample| * 2^L. While L is 0, which holds for as long as the stream has no more
// distinct values than the capacity, the estimate is exact.
//
// Sketches built with the same precision and key can be combined: the result is the sketch
// that would have been built from the union of both streams, so shards of a data set can be
// counted independently and merged afterwards. Sketches also encode to a compact, versioned
// binary form (and to JSON, gob and CBOR) that is fully validated on decode.
package bjkst
