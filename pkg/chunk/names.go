package chunk

import "strconv"

// Name returns the entry name of chunk i: its decimal index without padding.
func Name(i int) string {
	return strconv.Itoa(i)
}

// ParseIndex parses a chunk entry name. Only the canonical form produced by
// Name is accepted: decimal digits, no sign, no leading zeros.
func ParseIndex(name string) (int, bool) {
	if name == "" || (len(name) > 1 && name[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(name); i++ {
		if name[i] < '0' || name[i] > '9' {
			return 0, false
		}
	}
	i, err := strconv.Atoi(name)
	if err != nil {
		return 0, false
	}
	return i, true
}
