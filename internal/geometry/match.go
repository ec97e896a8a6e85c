package geometry

import "sort"

// Mapping maps a local geometry index to a provider geometry index.
// Unmatched local geometries are absent.
type Mapping map[int]int

// Match pairs every local geometry with the first provider geometry judged
// equal within DefaultEpsilon.
func Match(local, provider []Geometry) Mapping {
	return MatchWithin(local, provider, DefaultEpsilon)
}

// MatchWithin is Match with an explicit vertex tolerance.
func MatchWithin(local, provider []Geometry, epsilon float64) Mapping {
	m := Mapping{}
	for i, g := range local {
		for j, p := range provider {
			if Equal(g, p, epsilon) {
				m[i] = j
				break
			}
		}
	}
	return m
}

// Local returns the matched local indices in ascending order.
func (m Mapping) Local() []int {
	out := make([]int, 0, len(m))
	for i := range m {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Has reports whether local index i was matched.
func (m Mapping) Has(i int) bool {
	_, ok := m[i]
	return ok
}
