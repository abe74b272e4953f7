// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mtx implements the dense matrix multiplication
// that mtxbench measures by default.
//
// Matrices are row-major []float64. The right-hand operand is stored
// transposed, so that C[i][j] is the dot product of row i of A
// and row j of Bᵀ, and both inner loops walk memory sequentially.
package mtx

import "sync"

// Mul returns C = A·B, where a is m×n, bt is Bᵀ (k×n),
// and the result is m×k.
func Mul(a, bt []float64, m, n, k int) []float64 {
	check(a, bt, m, n, k)
	c := make([]float64, m*k)
	for i := range m {
		for j := range k {
			c[i*k+j] = dot(a[i*n:(i+1)*n], bt[j*n:(j+1)*n])
		}
	}
	return c
}

// MulPar is like Mul but splits the m·k result cells into threads
// contiguous blocks computed concurrently.
// The last block also takes the remainder of m·k / threads.
func MulPar(a, bt []float64, m, n, k, threads int) []float64 {
	check(a, bt, m, n, k)
	c := make([]float64, m*k)
	if threads < 1 {
		threads = 1
	}
	if threads > m*k {
		threads = max(1, m*k)
	}
	block := m * k / threads

	var wg sync.WaitGroup
	for l := range threads {
		from := block * l
		to := from + block
		if l == threads-1 {
			to = m * k
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for cell := from; cell < to; cell++ {
				i, j := cell/k, cell%k
				c[cell] = dot(a[i*n:(i+1)*n], bt[j*n:(j+1)*n])
			}
		}()
	}
	wg.Wait()
	return c
}

func dot(x, y []float64) float64 {
	// Four accumulators, as the vectorized kernel does.
	var s0, s1, s2, s3 float64
	i := 0
	for ; i+4 <= len(x); i += 4 {
		s0 += x[i] * y[i]
		s1 += x[i+1] * y[i+1]
		s2 += x[i+2] * y[i+2]
		s3 += x[i+3] * y[i+3]
	}
	for ; i < len(x); i++ {
		s0 += x[i] * y[i]
	}
	return (s0 + s1) + (s2 + s3)
}

func check(a, bt []float64, m, n, k int) {
	if m < 0 || n < 0 || k < 0 || len(a) != m*n || len(bt) != k*n {
		panic("mtx: dimension mismatch")
	}
}

// Fill returns a deterministic r×c matrix with entries in [0, 1).
// Different seeds give different matrices.
func Fill(r, c, seed int) []float64 {
	x := make([]float64, r*c)
	for i := range x {
		x[i] = float64((i*7+seed*13)%1000) / 1000
	}
	return x
}

// Transpose returns the c×r transpose of the r×c matrix x.
func Transpose(x []float64, r, c int) []float64 {
	t := make([]float64, len(x))
	for i := range r {
		for j := range c {
			t[j*r+i] = x[i*c+j]
		}
	}
	return t
}

// Sum returns the sum of the entries of x, used as a checksum.
func Sum(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v
	}
	return s
}
