package ns2

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"ns2pp/pkg/models"
)

// Positional field indices of an ns-2 trace line.
const (
	FieldEvent = iota
	FieldTime
	FieldFromNode
	FieldToNode
	FieldPktType
	FieldPktSize
	FieldFlags
	FieldFlowID
	FieldSrcAddr
	FieldDstAddr
	FieldSeq
	FieldPktID

	// NumFields is the minimum number of tokens a record must have.
	NumFields
)

var fieldNames = [NumFields]string{
	"event", "time", "from_node", "to_node", "pkt_type", "pkt_size",
	"flags", "flow_id", "src_addr", "dst_addr", "seq", "pkt_id",
}

// ErrTooFewFields is returned for lines with fewer than NumFields tokens.
var ErrTooFewFields = errors.New("too few fields")

// ParseError describes a required numeric field that failed to parse.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("field %s: invalid value %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LeadingToken returns the first whitespace separated token of line, which is
// the event code for a trace record.
func LeadingToken(line string) string {
	line = strings.TrimLeft(line, " \t\r\n\v\f")
	if i := strings.IndexAny(line, " \t\r\n\v\f"); i >= 0 {
		return line[:i]
	}
	return line
}

// Parse converts a trace line into an Event. Tokens beyond NumFields are ignored.
func Parse(line string) (*models.Event, error) {
	tokens := strings.Fields(line)
	if len(tokens) < NumFields {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrTooFewFields, len(tokens), NumFields)
	}

	event := &models.Event{
		Code:    tokens[FieldEvent],
		PktType: tokens[FieldPktType],
		Flags:   tokens[FieldFlags],
		SrcAddr: tokens[FieldSrcAddr],
		DstAddr: tokens[FieldDstAddr],
	}

	var err error
	if event.Time, err = parseFloat(tokens, FieldTime); err != nil {
		return nil, err
	}
	if math.IsNaN(event.Time) || math.IsInf(event.Time, 0) {
		return nil, &ParseError{Field: fieldNames[FieldTime], Value: tokens[FieldTime], Err: errors.New("time is not finite")}
	}
	if event.Time < 0 {
		return nil, &ParseError{Field: fieldNames[FieldTime], Value: tokens[FieldTime], Err: errors.New("negative time")}
	}

	ints := []struct {
		idx int
		dst *int
	}{
		{FieldFromNode, &event.FromNode},
		{FieldToNode, &event.ToNode},
		{FieldPktSize, &event.PktSize},
		{FieldFlowID, &event.FlowID},
		{FieldSeq, &event.Seq},
		{FieldPktID, &event.PktID},
	}
	for _, f := range ints {
		if *f.dst, err = parseInt(tokens, f.idx); err != nil {
			return nil, err
		}
	}
	if event.PktSize < 0 {
		return nil, &ParseError{Field: fieldNames[FieldPktSize], Value: tokens[FieldPktSize], Err: errors.New("negative size")}
	}

	return event, nil
}

func parseFloat(tokens []string, idx int) (float64, error) {
	v, err := strconv.ParseFloat(tokens[idx], 64)
	if err != nil {
		return 0, &ParseError{Field: fieldNames[idx], Value: tokens[idx], Err: err}
	}
	return v, nil
}

func parseInt(tokens []string, idx int) (int, error) {
	v, err := strconv.Atoi(tokens[idx])
	if err != nil {
		return 0, &ParseError{Field: fieldNames[idx], Value: tokens[idx], Err: err}
	}
	return v, nil
}
