// Package magnitude converts interleaved 8-bit I/Q samples into scaled
// magnitude values using a precomputed lookup table, the way dump1090-style
// decoders avoid a sqrt per sample on the hot path.
package magnitude

import "math"

// tableDim is the number of distinct |I-127| / |Q-127| values: samples are
// unsigned 8-bit centered at 127, so the offset ranges over [0,128].
const tableDim = 129

// Table is a precomputed |I|,|Q| -> magnitude lookup table.
type Table struct {
	lut []uint16
}

// NewTable builds the 129x129 magnitude table. LUT[i][q] = round(360*sqrt(i^2+q^2)),
// scaled well beyond the 0-255 sample range to retain resolution for the
// correlation math in the bit slicer.
func NewTable() *Table {
	t := &Table{lut: make([]uint16, tableDim*tableDim)}
	for i := 0; i < tableDim; i++ {
		for q := 0; q < tableDim; q++ {
			v := 360.0 * math.Sqrt(float64(i*i+q*q))
			t.lut[i*tableDim+q] = uint16(math.Round(v))
		}
	}
	return t
}

// Convert fills mag with one magnitude value per I/Q pair in iq. len(mag) must
// be >= len(iq)/2; iq must have even length.
func (t *Table) Convert(iq []byte, mag []uint16) {
	n := len(iq) / 2
	for k := 0; k < n; k++ {
		i := absOffset(iq[2*k])
		q := absOffset(iq[2*k+1])
		mag[k] = t.lut[int(i)*tableDim+int(q)]
	}
}

// ConvertToSlice is a convenience wrapper allocating the output slice.
func (t *Table) ConvertToSlice(iq []byte) []uint16 {
	mag := make([]uint16, len(iq)/2)
	t.Convert(iq, mag)
	return mag
}

func absOffset(sample byte) byte {
	if sample >= 127 {
		return sample - 127
	}
	return 127 - sample
}
