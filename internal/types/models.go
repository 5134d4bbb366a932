package models

import "strings"

// TagList is an ordered list of short tokens stored as comma separated text.
// A nil TagList means the value is absent.
type TagList []string

func ParseTagList(s string) TagList {
	var out TagList
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func NewTagList(items []string) TagList {
	if len(items) == 0 {
		return nil
	}
	return ParseTagList(strings.Join(items, ","))
}

func (l TagList) String() string {
	return strings.Join(l, ",")
}

func (l TagList) Contains(tag string) bool {
	for _, t := range l {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
