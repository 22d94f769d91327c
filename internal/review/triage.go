package review

import "sort"

// Partitions tracks the session-scoped triage state: which transaction
// indices the operator marked validated and which flagged. A transaction is
// in at most one partition; flagging wins over an earlier validation and
// vice versa. Partitions never outlive the session and are never persisted.
type Partitions struct {
	validated map[int]struct{}
	flagged   map[int]struct{}
}

// NewPartitions returns empty triage state.
func NewPartitions() *Partitions {
	return &Partitions{
		validated: make(map[int]struct{}),
		flagged:   make(map[int]struct{}),
	}
}

// Validate marks the given indices validated, clearing any flag on them.
func (p *Partitions) Validate(indices []int) {
	for _, i := range indices {
		delete(p.flagged, i)
		p.validated[i] = struct{}{}
	}
}

// Flag marks the given indices flagged, clearing any validation on them.
func (p *Partitions) Flag(indices []int) {
	for _, i := range indices {
		delete(p.validated, i)
		p.flagged[i] = struct{}{}
	}
}

// IsValidated reports whether index i is in the validated partition.
func (p *Partitions) IsValidated(i int) bool {
	_, ok := p.validated[i]
	return ok
}

// IsFlagged reports whether index i is in the flagged partition.
func (p *Partitions) IsFlagged(i int) bool {
	_, ok := p.flagged[i]
	return ok
}

// Flagged returns the flagged indices in ascending order.
func (p *Partitions) Flagged() []int {
	out := make([]int, 0, len(p.flagged))
	for i := range p.flagged {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// FilterActive reports whether a flag filter is in effect: detail actions
// then scope their candidate lists to the flagged indices.
func (p *Partitions) FilterActive() bool {
	return len(p.flagged) > 0
}

// Remap rewrites both partitions after the transactions at removed indices
// were dropped, so surviving marks keep following their rows. The removed
// slice may repeat indices; each row shifts survivors once.
func (p *Partitions) Remap(removed []int) {
	gone := make(map[int]struct{}, len(removed))
	for _, i := range removed {
		gone[i] = struct{}{}
	}
	shift := func(old map[int]struct{}) map[int]struct{} {
		fresh := make(map[int]struct{}, len(old))
		for i := range old {
			if _, dropped := gone[i]; dropped {
				continue
			}
			offset := 0
			for r := range gone {
				if r < i {
					offset++
				}
			}
			fresh[i-offset] = struct{}{}
		}
		return fresh
	}
	p.validated = shift(p.validated)
	p.flagged = shift(p.flagged)
}
