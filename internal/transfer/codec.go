package transfer

import (
	"strings"

	"gitlab.com/dirk.krummacker/contactbook-service/internal/model"
	"gitlab.com/dirk.krummacker/contactbook-service/pkg/api"
)

// A spreadsheet cell holds all methods of one type of one contact. The grammar is
//
//	cell    = segment { "; " segment }
//	segment = value [ " (" label ")" ] [ " [Primary]" ]
//
// Values that contain parentheses, brackets or semicolons themselves do not survive the round
// trip: the last parenthesis pair is always taken as the label and the cell is always split at
// every semicolon.
const (
	segmentSeparator = "; "
	primaryMarker    = "[Primary]"
)

// EncodeMethod renders one contact method as a cell segment.
func EncodeMethod(m model.ContactMethod) string {
	segment := m.Value
	if m.Label != "" {
		segment += " (" + m.Label + ")"
	}
	if m.IsPrimary {
		segment += " " + primaryMarker
	}
	return segment
}

// EncodeCell renders the methods of the given type, in their given order, as one cell.
func EncodeCell(methods []model.ContactMethod, t model.MethodType) string {
	var segments []string
	for _, m := range methods {
		if m.MethodType == t {
			segments = append(segments, EncodeMethod(m))
		}
	}
	return strings.Join(segments, segmentSeparator)
}

// DecodeSegment parses one cell segment. The second result is false if nothing but metadata is
// left once the primary marker and the label are stripped.
func DecodeSegment(segment string) (api.ContactMethodInput, bool) {
	var method api.ContactMethodInput
	value := strings.TrimSpace(segment)
	if strings.Contains(value, primaryMarker) {
		method.IsPrimary = true
		value = strings.TrimSpace(strings.ReplaceAll(value, primaryMarker, ""))
	}
	start := strings.LastIndex(value, "(")
	end := strings.LastIndex(value, ")")
	if start >= 0 && start < end {
		method.Label = strings.TrimSpace(value[start+1 : end])
		value = strings.TrimSpace(value[:start])
	}
	method.Value = value
	return method, value != ""
}

// DecodeCell parses a cell into contact methods of the given type. Empty segments are ignored.
func DecodeCell(cell string, t model.MethodType) []api.ContactMethodInput {
	cell = strings.TrimSpace(cell)
	if cell == "" || cell == "nan" {
		return nil
	}
	var methods []api.ContactMethodInput
	for _, segment := range strings.Split(cell, ";") {
		if strings.TrimSpace(segment) == "" {
			continue
		}
		if method, ok := DecodeSegment(segment); ok {
			method.MethodType = string(t)
			methods = append(methods, method)
		}
	}
	return methods
}
