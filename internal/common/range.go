package common

import (
	"fmt"
)

// BlockRange is an inclusive interval of block numbers.
type BlockRange struct {
	Start uint64
	End   uint64
}

// Page is a BlockRange queried with a single eth_getLogs request.
type Page = BlockRange

func NewBlockRange(start, end uint64) (BlockRange, error) {
	if start > end {
		return BlockRange{}, fmt.Errorf("invalid block range: start %d is after end %d", start, end)
	}
	return BlockRange{Start: start, End: end}, nil
}

// Width returns the number of blocks in the range.
// The full uint64 range does not fit and is reported as 0.
func (r BlockRange) Width() uint64 {
	return r.End - r.Start + 1
}

func (r BlockRange) String() string {
	return fmt.Sprintf("[%d, %d]", r.Start, r.End)
}

// PlanPages splits [0, head] into pages of at most maxWidth blocks.
func PlanPages(head uint64, maxWidth uint64) ([]Page, error) {
	return PlanRange(0, head, maxWidth)
}

// PlanRange splits [from, to] into contiguous, non-overlapping pages of at
// most maxWidth blocks, ordered by start. Each page starts one block after
// the previous page ends.
func PlanRange(from uint64, to uint64, maxWidth uint64) ([]Page, error) {
	if maxWidth == 0 {
		return nil, fmt.Errorf("page width must be at least 1")
	}
	if from > to {
		return nil, fmt.Errorf("invalid block range: from %d is after to %d", from, to)
	}

	pages := make([]Page, 0, pageCount(from, to, maxWidth))
	for n := from; ; {
		end := to
		// compare remaining span first so n+maxWidth-1 can never overflow
		if to-n >= maxWidth {
			end = n + maxWidth - 1
		}
		pages = append(pages, Page{Start: n, End: end})
		if end == to {
			break
		}
		n = end + 1
	}
	return pages, nil
}

func pageCount(from, to, maxWidth uint64) uint64 {
	span := to - from
	count := span/maxWidth + 1
	// capacity hint only, avoid huge allocations for absurd inputs
	if count > 1<<20 {
		return 1 << 20
	}
	return count
}
