package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// SegmentTypeEngine is the segment type of the root node that each test
// engine contributes to a test plan.
const SegmentTypeEngine = "engine"

// A Segment is one typed element of a UniqueID, such as "[engine:fakeunit]"
// or "[method:TestParse]". Segment types are defined by whichever engine
// creates the segment; the launcher only interprets the engine segment.
type Segment struct {
	Type  string
	Value string
}

func (s Segment) String() string {
	return "[" + escapeSegmentPart(s.Type) + ":" + escapeSegmentPart(s.Value) + "]"
}

// UniqueID is the hierarchical identifier of a node in a test plan. It is an
// ordered sequence of typed segments whose string form is
// "[type:value]/[type:value]/...". The string form round-trips through
// ParseUniqueID.
//
// UniqueIDs are values: Append returns a new id and never mutates the
// receiver.
type UniqueID []Segment

// NewEngineUniqueID returns the unique id of the root node for the engine
// with the given id.
func NewEngineUniqueID(engineID string) UniqueID {
	return UniqueID{{Type: SegmentTypeEngine, Value: engineID}}
}

// ParseUniqueID parses the string form produced by UniqueID.String.
func ParseUniqueID(s string) (UniqueID, error) {
	if s == "" {
		return nil, fmt.Errorf("unique id must not be empty")
	}
	parts := strings.Split(s, "/")
	id := make(UniqueID, 0, len(parts))
	for _, part := range parts {
		if len(part) < 2 || part[0] != '[' || part[len(part)-1] != ']' {
			return nil, fmt.Errorf("malformed unique id segment %q in %q", part, s)
		}
		inner := part[1 : len(part)-1]
		colon := strings.Index(inner, ":")
		if colon < 0 {
			return nil, fmt.Errorf("unique id segment %q has no type separator", part)
		}
		segType, err := unescapeSegmentPart(inner[:colon])
		if err != nil {
			return nil, fmt.Errorf("unique id segment %q: %w", part, err)
		}
		segValue, err := unescapeSegmentPart(inner[colon+1:])
		if err != nil {
			return nil, fmt.Errorf("unique id segment %q: %w", part, err)
		}
		if segType == "" || segValue == "" {
			return nil, fmt.Errorf("unique id segment %q has a blank type or value", part)
		}
		id = append(id, Segment{Type: segType, Value: segValue})
	}
	return id, nil
}

// Append returns a new UniqueID with one additional segment.
func (u UniqueID) Append(segmentType, value string) UniqueID {
	out := make(UniqueID, 0, len(u)+1)
	out = append(out, u...)
	return append(out, Segment{Type: segmentType, Value: value})
}

func (u UniqueID) String() string {
	parts := make([]string, 0, len(u))
	for _, s := range u {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, "/")
}

// Last returns the final segment. It panics on an empty id, like indexing an
// empty slice would.
func (u UniqueID) Last() Segment {
	return u[len(u)-1]
}

// Equals reports whether two ids have identical segments.
func (u UniqueID) Equals(other UniqueID) bool {
	if len(u) != len(other) {
		return false
	}
	for i := range u {
		if u[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is a leading subsequence of u. Every id is
// a prefix of itself.
func (u UniqueID) HasPrefix(prefix UniqueID) bool {
	if len(prefix) > len(u) {
		return false
	}
	for i := range prefix {
		if u[i] != prefix[i] {
			return false
		}
	}
	return true
}

// EngineID returns the engine id embedded in the first segment, if the first
// segment is an engine segment.
func (u UniqueID) EngineID() (string, bool) {
	if len(u) == 0 || u[0].Type != SegmentTypeEngine {
		return "", false
	}
	return u[0].Value, true
}

// The reserved characters are the ones that delimit segments in the string
// form, plus the escape character itself.
const segmentReservedChars = "%[]:/"

func escapeSegmentPart(s string) string {
	if !strings.ContainsAny(s, segmentReservedChars) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(segmentReservedChars, c) >= 0 {
			fmt.Fprintf(&b, "%%%02X", c)
		} else {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func unescapeSegmentPart(s string) (string, error) {
	if !strings.Contains(s, "%") {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+3 > len(s) {
			return "", fmt.Errorf("truncated escape sequence in %q", s)
		}
		decoded, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
		if err != nil {
			return "", fmt.Errorf("invalid escape sequence in %q", s)
		}
		b.WriteByte(byte(decoded))
		i += 2
	}
	return b.String(), nil
}
