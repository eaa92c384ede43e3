package service

import (
	"strconv"
	"time"

	"github.com/BrandonDHaskell/scanlog/internal/scanlog/types"
)

// SheetHeader is the first line of an exported sheet.
var SheetHeader = []string{"No.", "Content", "Scan date", "Scan time"}

const sheetDateLayout = "02/01/2006"

// BuildSheet lays rows out the way the spreadsheet writer expects them:
// a header, then a running number from 1, the content, the date as
// dd/MM/yyyy and the time. Dates that do not parse are passed through.
func BuildSheet(rows []types.Row) [][]string {
	out := make([][]string, 0, len(rows)+1)
	out = append(out, append([]string(nil), SheetHeader...))
	for i, r := range rows {
		out = append(out, []string{
			strconv.Itoa(i + 1),
			r.Content,
			displayDate(r.Date),
			r.Time,
		})
	}
	return out
}

// DefaultExportFilename is the suggested file name for an export of [from, to].
func DefaultExportFilename(from, to types.Date) string {
	return "barcode_scans_" + from.String() + "_to_" + to.String() + ".xlsx"
}

func displayDate(s string) string {
	t, err := time.Parse(types.DateLayout, s)
	if err != nil {
		return s
	}
	return t.Format(sheetDateLayout)
}
