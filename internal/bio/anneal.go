package bio

// Anneal repairs two common BIO errors in classifier output and returns a
// corrected copy; tags is not modified.
//
//   - "B-X I-Y" with X != Y: the B- tag takes the type of the following I-.
//   - "B-X|I-X, O..., I-X": the O gap is filled with I-X.
func Anneal(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)

	for i := 0; i+1 < len(out); i++ {
		cur, next := ParseTag(out[i]), ParseTag(out[i+1])
		if cur.Prefix == PrefixBegin && next.Prefix == PrefixInside && cur.Type != next.Type {
			out[i] = Tag{Prefix: PrefixBegin, Type: next.Type}.String()
		}
	}

	i := 0
	for i < len(out)-2 {
		start := ParseTag(out[i])
		if !start.IsEntity() {
			i++
			continue
		}
		j := i + 1
		for j < len(out) && out[j] == Outside {
			j++
		}
		if j < len(out) {
			if end := ParseTag(out[j]); end.Prefix == PrefixInside && end.Type == start.Type {
				fill := Tag{Prefix: PrefixInside, Type: start.Type}.String()
				for k := i + 1; k < j; k++ {
					out[k] = fill
				}
			}
		}
		i = j
	}
	return out
}
