// Package internal holds iterator helpers shared by the toolchain.
package internal

import (
	"iter"
)

// Concat2 yields the pairs of each sequence in turn. A consumer that
// collects into a map keeps the last value of a repeated key.
func Concat2[K any, V any](seqs ...iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, seq := range seqs {
			for key, value := range seq {
				if !yield(key, value) {
					return
				}
			}
		}
	}
}
