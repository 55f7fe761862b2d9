package filters

import (
	"errors"

	"github.com/Rick-Wilson/pdf-handouts/graph"
)

// undoPredictor reverses the predictor named in the decode parameters.
// Cross-reference streams almost always use PNG Up (predictor 12); the
// full PNG family is handled since the row tag chooses per row anyway.
func undoPredictor(data []byte, params *graph.Dict) ([]byte, error) {
	if params == nil {
		return data, nil
	}
	predictor := dictInt(params, "Predictor", 1)
	if predictor <= 1 {
		return data, nil
	}
	colors := dictInt(params, "Colors", 1)
	bpc := dictInt(params, "BitsPerComponent", 8)
	columns := dictInt(params, "Columns", 1)
	bpp := (colors*bpc + 7) / 8
	rowLen := (colors*bpc*columns + 7) / 8

	if predictor == 2 {
		// TIFF horizontal differencing; only the 8-bit case occurs here.
		if bpc != 8 {
			return nil, errors.New("TIFF predictor: unsupported bit depth")
		}
		out := append([]byte(nil), data...)
		for r := 0; r+rowLen <= len(out); r += rowLen {
			row := out[r : r+rowLen]
			for i := bpp; i < len(row); i++ {
				row[i] += row[i-bpp]
			}
		}
		return out, nil
	}

	// PNG predictors: each row is prefixed with a filter-type byte.
	if rowLen <= 0 {
		return nil, errors.New("predictor: invalid Columns")
	}
	stride := rowLen + 1
	if len(data)%stride != 0 {
		return nil, errors.New("predictor: data not a whole number of rows")
	}
	rows := len(data) / stride
	out := make([]byte, 0, rows*rowLen)
	prev := make([]byte, rowLen)
	row := make([]byte, rowLen)
	for r := 0; r < rows; r++ {
		tag := data[r*stride]
		copy(row, data[r*stride+1:(r+1)*stride])
		switch tag {
		case 0: // None
		case 1: // Sub
			for i := bpp; i < rowLen; i++ {
				row[i] += row[i-bpp]
			}
		case 2: // Up
			for i := 0; i < rowLen; i++ {
				row[i] += prev[i]
			}
		case 3: // Average
			for i := 0; i < rowLen; i++ {
				left := 0
				if i >= bpp {
					left = int(row[i-bpp])
				}
				row[i] += byte((left + int(prev[i])) / 2)
			}
		case 4: // Paeth
			for i := 0; i < rowLen; i++ {
				var left, upLeft byte
				if i >= bpp {
					left = row[i-bpp]
					upLeft = prev[i-bpp]
				}
				row[i] += paeth(left, prev[i], upLeft)
			}
		default:
			return nil, errors.New("predictor: unknown PNG row filter")
		}
		out = append(out, row...)
		copy(prev, row)
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func dictInt(d *graph.Dict, key string, def int) int {
	v, ok := d.Get(key)
	if !ok {
		return def
	}
	n, ok := graph.IntValue(v)
	if !ok {
		return def
	}
	return int(n)
}
