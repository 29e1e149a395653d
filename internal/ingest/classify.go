package ingest

import "strings"

// FileKind identifies which of the three exports an uploaded file is.
type FileKind int

const (
	KindUnrecognized FileKind = iota
	KindLead
	KindPlainSpend
	KindTaggedSpend
)

func (k FileKind) String() string {
	switch k {
	case KindLead:
		return "lead"
	case KindPlainSpend:
		return "spend"
	case KindTaggedSpend:
		return "tagged_spend"
	}
	return "unrecognized"
}

// Classify routes an upload by filename substring, case-insensitive.
// "gasto_tag" must win over the plain "gasto" match.
func Classify(filename string) FileKind {
	name := strings.ToLower(filename)
	switch {
	case strings.Contains(name, "hubspot"):
		return KindLead
	case strings.Contains(name, "gasto_tag"):
		return KindTaggedSpend
	case strings.Contains(name, "gasto"):
		return KindPlainSpend
	}
	return KindUnrecognized
}
