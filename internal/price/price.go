// Package price handles price and size values from prediction market APIs
// without losing precision.
package price

import (
	"encoding/json"
	"strconv"
)

// Price is a fixed-point value scaled by Scale. The APIs send prices as
// decimal strings ("0.525") or raw numbers; both are accepted.
type Price int64

// Size is a fixed-point share amount with the same scale as Price.
type Size int64

const Scale int64 = 1_000_000

var (
	_ json.Unmarshaler = (*Price)(nil)
	_ json.Unmarshaler = (*Size)(nil)
)

func (p *Price) UnmarshalJSON(data []byte) error {
	v, err := decodeFixed(data)
	if err != nil {
		return err
	}
	*p = Price(v)
	return nil
}

func (s *Size) UnmarshalJSON(data []byte) error {
	v, err := decodeFixed(data)
	if err != nil {
		return err
	}
	*s = Size(v)
	return nil
}

func (p Price) Float64() float64 {
	return float64(p) / float64(Scale)
}

func (s Size) Float64() float64 {
	return float64(s) / float64(Scale)
}

func (p Price) String() string {
	return strconv.FormatFloat(p.Float64(), 'f', -1, 64)
}

func decodeFixed(data []byte) (int64, error) {
	if len(data) > 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	// Else we assume that it is a raw number.

	neg := false
	i := 0
	if i < len(data) && (data[i] == '-' || data[i] == '+') {
		neg = data[i] == '-'
		i++
	}

	var res int64
	for i < len(data) && data[i] != '.' {
		res = res*10 + int64(data[i]-'0')*Scale
		i++
	}

	if i < len(data) && data[i] == '.' {
		i++
		mult := Scale
		for i < len(data) && mult > 1 {
			mult /= 10
			res += int64(data[i]-'0') * mult
			i++
		}
	}

	if neg {
		res = -res
	}
	return res, nil
}
