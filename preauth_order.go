// SPDX-License-Identifier: Apache-2.0

package initcreds

import (
	"strconv"
	"strings"
)

// parsePreferredTypes parses spec §4.3's preference string: comma/space
// separated integers, e.g. the default "17, 16, 15, 14". An unrecognized
// token stops parsing without error, returning whatever prefix parsed.
func parsePreferredTypes(pref string) []int32 {
	fields := strings.FieldsFunc(pref, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})

	var out []int32
	for _, f := range fields {
		n, err := strconv.ParseInt(f, 10, 32)
		if err != nil {
			break
		}
		out = append(out, int32(n))
	}
	return out
}

// orderPadata implements spec §4.3's stable bubble-to-front: for each
// preferred type in order, scan the remaining tail for the first matching
// element and move it to the next base position, shifting the elements in
// between down by one. Types not listed keep their original relative order
// at the tail.
func orderPadata(pa []PAData, pref string) []PAData {
	preferred := parsePreferredTypes(pref)
	if len(preferred) == 0 {
		return pa
	}

	out := append([]PAData(nil), pa...)
	base := 0
	for _, ptype := range preferred {
		for i := base; i < len(out); i++ {
			if out[i].Type == ptype {
				match := out[i]
				copy(out[base+1:i+1], out[base:i])
				out[base] = match
				base++
				break
			}
		}
	}
	return out
}
