package clip

import "math"

// Expand maps the clip's stored notes onto the arrangement timeline. A
// looping clip tiles its loop window across [Start, End), so one stored note
// may produce several occurrences; notes that never land inside the clip are
// dropped. Output follows stored note order, occurrences ascending.
func Expand(c Clip) ([]Note, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	loopLen := c.LoopLength()
	tiles := c.LoopEnabled && c.Length() > loopLen-c.StartRelative

	var out []Note
	emitFrom := func(n Note, first float64) {
		// skip whole loops that end before the clip starts
		skip := max(0, math.Ceil((c.Start-first)/loopLen))
		limit := int(c.repeats())
		for k := 0; k <= limit; k++ {
			start := first + (skip+float64(k))*loopLen
			if start >= c.End {
				break
			}
			if start >= c.Start {
				out = append(out, n.at(start))
			}
		}
	}

	for _, n := range c.Notes {
		start := c.Start + n.Start - c.LoopStart - c.StartRelative
		inLoop := c.LoopEnabled && c.LoopStart <= n.Start && n.Start < c.LoopEnd

		switch {
		case c.Start <= start && start < c.End:
			if tiles && inLoop {
				emitFrom(n, start)
			} else {
				out = append(out, n.at(start))
			}
		case inLoop:
			// authored before the start marker: first heard one loop later
			emitFrom(n, start+loopLen)
		}
	}
	return out, nil
}

func (n Note) at(start float64) Note {
	n.Start = start
	return n
}
