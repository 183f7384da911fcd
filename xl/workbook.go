package xl

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/adnsv/tabxl/table"
)

// ErrInvalidSheetName is returned for names a spreadsheet application
// would refuse to open.
var ErrInvalidSheetName = errors.New("invalid sheet name")

const (
	maxSheetNameLen   = 31
	sheetNameReserved = `:\/?*[]`
)

type Workbook struct {
	// AppName is recorded as the producing application. Empty leaves it out.
	AppName string
	Sheets  []*Sheet

	lastSheetID int
}

func NewWorkbook() *Workbook {
	return &Workbook{}
}

// AddSheet appends a sheet. Sheet ids are assigned in ascending order
// starting at 1 and are never reused. Duplicate names are accepted.
func (wb *Workbook) AddSheet(name string) (*Sheet, error) {
	if err := checkSheetName(name); err != nil {
		return nil, err
	}
	wb.lastSheetID++
	sh := &Sheet{Name: name, id: wb.lastSheetID, nextRowNumber: 1}
	wb.Sheets = append(wb.Sheets, sh)
	return sh, nil
}

func checkSheetName(name string) error {
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		return fmt.Errorf("%w: empty", ErrInvalidSheetName)
	case n > maxSheetNameLen:
		return fmt.Errorf("%w: %q is longer than %d characters", ErrInvalidSheetName, name, maxSheetNameLen)
	case strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'"):
		return fmt.Errorf("%w: %q starts or ends with a quote", ErrInvalidSheetName, name)
	case strings.ContainsAny(name, sheetNameReserved):
		return fmt.Errorf("%w: %q contains one of %s", ErrInvalidSheetName, name, sheetNameReserved)
	case table.StripInvalidXMLChars(name) != name:
		return fmt.Errorf("%w: %q contains control characters", ErrInvalidSheetName, name)
	}
	return nil
}
