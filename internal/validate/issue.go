package validate

import "fmt"

// Error codes (E200-E299).
const (
	ErrDuplicateNodeID = "E201"
	ErrDanglingSrc     = "E202"
	ErrDanglingDst     = "E203"
	ErrSelfLoop        = "E204"
	ErrDisconnected    = "E205"
	ErrUnknownNodeType = "E206"
	ErrUnknownEdgeType = "E207"
)

// Warning codes (W300-W399).
const (
	WarnAssemblyEmpty    = "W301"
	WarnPartNoGeometry   = "W302"
	WarnUnitConflict     = "W303"
	WarnChildOutsideBBox = "W304"
	WarnNodeOutsideBBox  = "W305"
	WarnProducer         = "W399"
)

// Issue is a single validation finding.
type Issue struct {
	Code    string `json:"code"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// String renders the issue in the form stored in the report.
func (i Issue) String() string {
	if i.Subject == "" {
		return fmt.Sprintf("[%s] %s", i.Code, i.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", i.Code, i.Subject, i.Message)
}

func render(issues []Issue) []string {
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = is.String()
	}
	return out
}
