// Package wire converts export rows to and from protobuf well-known types,
// shared by the HTTP (application/x-protobuf) and gRPC surfaces.
package wire

import (
	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/BrandonDHaskell/scanlog/internal/scanlog/types"
)

const (
	fieldContent = "content"
	fieldDate    = "date"
	fieldTime    = "time"
	fieldFrom    = "from"
	fieldTo      = "to"
)

// RowsToProto encodes rows as a list of {content, date, time} structs.
func RowsToProto(rows []types.Row) *structpb.ListValue {
	out := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(rows))}
	for _, r := range rows {
		out.Values = append(out.Values, structpb.NewStructValue(&structpb.Struct{
			Fields: map[string]*structpb.Value{
				fieldContent: structpb.NewStringValue(r.Content),
				fieldDate:    structpb.NewStringValue(r.Date),
				fieldTime:    structpb.NewStringValue(r.Time),
			},
		}))
	}
	return out
}

func RowsFromProto(l *structpb.ListValue) ([]types.Row, error) {
	rows := make([]types.Row, 0, len(l.GetValues()))
	for i, v := range l.GetValues() {
		s := v.GetStructValue()
		if s == nil {
			return nil, errors.Newf("row %d is not a struct", i)
		}
		f := s.GetFields()
		rows = append(rows, types.Row{
			Content: f[fieldContent].GetStringValue(),
			Date:    f[fieldDate].GetStringValue(),
			Time:    f[fieldTime].GetStringValue(),
		})
	}
	return rows, nil
}

// RangeToProto encodes an export request.
func RangeToProto(from, to types.Date) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldFrom: structpb.NewStringValue(from.String()),
		fieldTo:   structpb.NewStringValue(to.String()),
	}}
}

func RangeFromProto(s *structpb.Struct) (from, to types.Date, err error) {
	f := s.GetFields()
	from, err = types.ParseDate(f[fieldFrom].GetStringValue())
	if err != nil {
		return types.Date{}, types.Date{}, errors.Wrap(err, "from")
	}
	to, err = types.ParseDate(f[fieldTo].GetStringValue())
	if err != nil {
		return types.Date{}, types.Date{}, errors.Wrap(err, "to")
	}
	return from, to, nil
}
