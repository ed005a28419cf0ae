// SPDX-License-Identifier: Apache-2.0

package initcreds

import "math"

// saturatingAddInt32 adds x and y, clamping the result to the int32 range
// instead of wrapping. Used wherever a timestamp offset (start_time,
// tkt_life, renew_life) is added to a base time expressed as seconds since
// the epoch: a wrapped sum could turn a "from" value that is legitimately
// near the year-2038 boundary into a negative number, producing a
// paradoxical request where from > till. See spec §4.1.
func saturatingAddInt32(x, y int32) int32 {
	if x > 0 && y > math.MaxInt32-x {
		return math.MaxInt32
	}
	if x < 0 && y < math.MinInt32-x {
		return math.MinInt32
	}
	return x + y
}
