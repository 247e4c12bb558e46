package bio

import "strings"

// Prefix is the BIO position marker of a tag.
type Prefix byte

const (
	PrefixOutside Prefix = 'O'
	PrefixBegin   Prefix = 'B'
	PrefixInside  Prefix = 'I'
)

// Outside is the tag for tokens that belong to no entity.
const Outside = "O"

// Tag is a parsed BIO label.
type Tag struct {
	Prefix Prefix
	Type   string // empty when Prefix is PrefixOutside
}

// ParseTag splits a raw label into prefix and entity type. Anything that is
// not "B-<type>" or "I-<type>" with a non-empty type is treated as outside.
func ParseTag(raw string) Tag {
	switch {
	case strings.HasPrefix(raw, "B-") && len(raw) > 2:
		return Tag{Prefix: PrefixBegin, Type: raw[2:]}
	case strings.HasPrefix(raw, "I-") && len(raw) > 2:
		return Tag{Prefix: PrefixInside, Type: raw[2:]}
	}
	return Tag{Prefix: PrefixOutside}
}

func (t Tag) String() string {
	if t.Prefix == PrefixOutside {
		return Outside
	}
	return string(t.Prefix) + "-" + t.Type
}

// IsEntity reports whether the tag marks a token inside an entity.
func (t Tag) IsEntity() bool {
	return t.Prefix != PrefixOutside
}
