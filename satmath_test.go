package initcreds

import (
	"math"
	"testing"
)

func TestSaturatingAddInt32(t *testing.T) {
	a := NewAssert(t)

	a.Equal(int32(30), saturatingAddInt32(10, 20))
	a.Equal(int32(-10), saturatingAddInt32(10, -20))
	a.Equal(int32(math.MaxInt32), saturatingAddInt32(math.MaxInt32-5, 10))
	a.Equal(int32(math.MinInt32), saturatingAddInt32(math.MinInt32+5, -10))
	a.Equal(int32(0), saturatingAddInt32(0, 0))
}
