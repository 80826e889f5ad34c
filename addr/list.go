package addr

// A sentinel address list is an ordered, duplicate-free []Addr for one
// master name. The first entry is the preferred sentinel to try (spec.md
// §3). All operations below are value-level: they return new lists and
// perform no I/O.

// AddBack appends each of addrs not already present in list, preserving
// input order, after parsing each with Parse.
func AddBack(list []Addr, addrs ...string) ([]Addr, error) {
	parsed := make([]Addr, len(addrs))
	for i, s := range addrs {
		a, err := Parse(s)
		if err != nil {
			return nil, err
		}
		parsed[i] = a
	}
	return AddBackAddr(list, parsed...), nil
}

// AddBackAddr is like AddBack but takes already-parsed addresses, the form
// used internally by the sentinel resolver when promoting gossiped peers.
func AddBackAddr(list []Addr, addrs ...Addr) []Addr {
	out := append([]Addr(nil), list...)
	for _, a := range addrs {
		if indexOf(out, a) < 0 {
			out = append(out, a)
		}
	}
	return out
}

// AddFront ensures addr is the first element of list. If it already is,
// list is returned unchanged; otherwise any prior occurrence is removed and
// addr is prepended.
func AddFront(list []Addr, s string) ([]Addr, error) {
	a, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return AddFrontAddr(list, a), nil
}

// AddFrontAddr is the already-parsed form of AddFront, used internally when
// the resolver promotes the sentinel that reported the master.
func AddFrontAddr(list []Addr, a Addr) []Addr {
	if len(list) > 0 && list[0].Equal(a) {
		return list
	}
	head := a
	if i := indexOf(list, a); i >= 0 {
		head = list[i] // keep the stored occurrence's metadata
	}
	out := make([]Addr, 0, len(list)+1)
	out = append(out, head)
	for _, existing := range list {
		if !existing.Equal(a) {
			out = append(out, existing)
		}
	}
	return out
}

// Remove drops all occurrences of addr from list.
func Remove(list []Addr, s string) ([]Addr, error) {
	a, err := Parse(s)
	if err != nil {
		return nil, err
	}
	out := make([]Addr, 0, len(list))
	for _, existing := range list {
		if !existing.Equal(a) {
			out = append(out, existing)
		}
	}
	return out, nil
}

// indexOf returns the index of the first address in list equal to a, or -1.
// When a match is found by value equality, its stored metadata (Name) is
// from whichever occurrence was recorded first in list.
func indexOf(list []Addr, a Addr) int {
	for i, existing := range list {
		if existing.Equal(a) {
			return i
		}
	}
	return -1
}

// Clean normalizes an address map: keys are kept exactly as given (they are
// already strings) and values are deduplicated while preserving the
// metadata of the first occurrence of each distinct address.
func Clean(m map[string][]Addr) map[string][]Addr {
	out := make(map[string][]Addr, len(m))
	for k, v := range m {
		var deduped []Addr
		for _, a := range v {
			if indexOf(deduped, a) < 0 {
				deduped = append(deduped, a)
			}
		}
		out[k] = deduped
	}
	return out
}
