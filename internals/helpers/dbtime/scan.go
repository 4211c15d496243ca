package dbtime

import (
	"fmt"
	"strings"
	"time"
)

// Date scans a DATE column from any driver: postgres hands back time.Time,
// sqlite may hand back text depending on the query shape.
type Date struct{ time.Time }

func (d *Date) Scan(v any) error {
	switch x := v.(type) {
	case time.Time:
		d.Time = time.Date(x.Year(), x.Month(), x.Day(), 0, 0, 0, 0, time.UTC)
		return nil
	case string:
		return d.parse(x)
	case []byte:
		return d.parse(string(x))
	case nil:
		d.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("dbtime: unsupported Scan type %T", v)
	}
}

func (d *Date) parse(s string) error {
	t, err := ParseDate(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}
