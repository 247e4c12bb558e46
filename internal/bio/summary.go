package bio

import "sort"

// Group collects the span texts of one canonical entity type.
type Group struct {
	Type  string   `json:"type"`
	Label string   `json:"label"`
	Texts []string `json:"texts"`
}

// Summary is the grouped entity listing shown next to highlighted text.
type Summary struct {
	Count  int     `json:"count"`
	Groups []Group `json:"groups"`
}

// Summarize groups spans by canonical type. Groups are sorted by type name and
// keep span texts in order of appearance, duplicates included.
func Summarize(spans []EntitySpan) Summary {
	byType := make(map[string]*Group)
	var order []string
	for _, s := range spans {
		typ := Canonical(s.Type)
		g, ok := byType[typ]
		if !ok {
			g = &Group{Type: typ, Label: DisplayLabel(typ)}
			byType[typ] = g
			order = append(order, typ)
		}
		g.Texts = append(g.Texts, s.Text)
	}
	sort.Strings(order)

	sum := Summary{Count: len(spans), Groups: make([]Group, 0, len(order))}
	for _, typ := range order {
		sum.Groups = append(sum.Groups, *byType[typ])
	}
	return sum
}
