// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blcp

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestMatrixNSkipPadding(tst *testing.T) {
	chk.PrintTitle("blcp.Matrix: NSkip rounds up to a multiple of 4")

	cases := map[int]int{0: 4, 1: 4, 2: 4, 3: 4, 4: 4, 5: 8, 7: 8, 8: 8, 9: 12}
	for n, want := range cases {
		m := NewMatrix(n)
		if m.NSkip() != want {
			tst.Errorf("NSkip(%d) = %d, want %d", n, m.NSkip(), want)
		}
		if m.N() != n {
			tst.Errorf("N(%d) = %d, want %d", n, m.N(), n)
		}
	}
}

func TestMatrixGetSetRoundTrip(tst *testing.T) {
	chk.PrintTitle("blcp.Matrix: Get/Set round trip over the padded layout")

	m := NewMatrix(5)
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			m.Set(i, j, float64(i*10+j))
		}
	}
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			chk.Scalar(tst, "A[i,j]", 1e-15, m.Get(i, j), float64(i*10+j))
		}
	}
}

func TestMatrixZeroClearsPadding(tst *testing.T) {
	chk.PrintTitle("blcp.Matrix: Zero clears the padding columns too")

	m := NewMatrix(5)
	row := m.Row(0)
	for i := range row {
		row[i] = 1
	}
	m.Zero()
	for i, v := range m.Row(0) {
		if v != 0 {
			tst.Errorf("Row(0)[%d] = %g after Zero, want 0", i, v)
		}
	}
}

func TestMatrixDenseStripsPadding(tst *testing.T) {
	chk.PrintTitle("blcp.Matrix: Dense strips padding columns")

	m := NewMatrix(3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m.Set(i, j, float64(i+j))
		}
	}
	dense := m.Dense()
	if len(dense) != 3 {
		tst.Fatalf("Dense() returned %d rows, want 3", len(dense))
	}
	for i, row := range dense {
		if len(row) != 3 {
			tst.Fatalf("Dense() row %d has %d columns, want 3", i, len(row))
		}
	}
}

func TestMatrixCheckSymmetric(tst *testing.T) {
	chk.PrintTitle("blcp.Matrix: CheckSymmetric detects asymmetry")

	m := NewMatrix(2)
	m.Set(0, 0, 2)
	m.Set(0, 1, 1)
	m.Set(1, 0, 1)
	m.Set(1, 1, 2)
	if _, ok := m.CheckSymmetric(1e-9); !ok {
		tst.Errorf("symmetric matrix reported as asymmetric")
	}

	m.Set(1, 0, 1.5)
	worst, ok := m.CheckSymmetric(1e-9)
	if ok {
		tst.Errorf("asymmetric matrix reported as symmetric")
	}
	chk.Scalar(tst, "worst asymmetry", 1e-12, worst, 0.5)
}

func TestMatrixColumnSquaredNorms(tst *testing.T) {
	chk.PrintTitle("blcp.Matrix: ColumnSquaredNorms")

	m := NewMatrix(2)
	m.Set(0, 0, 3)
	m.Set(1, 0, 4)
	m.Set(0, 1, 0)
	m.Set(1, 1, 0)
	norms := m.ColumnSquaredNorms()
	chk.Vector(tst, "column squared norms", 1e-12, norms, []float64{25, 0})
}
