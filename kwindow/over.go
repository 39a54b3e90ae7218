package kwindow

import (
	"fmt"
	"time"
)

// BoundKind says whether an over window bound counts rows or time.
type BoundKind int

const (
	BoundRange BoundKind = iota
	BoundRows
)

func (k BoundKind) String() string {
	if k == BoundRows {
		return "ROWS"
	}
	return "RANGE"
}

// Bound is the preceding bound of an over window.
type Bound struct {
	Kind      BoundKind
	Unbounded bool
	// Rows is the preceding row count of a ROWS bound, Range the preceding
	// interval of a RANGE bound. The other one stays zero.
	Rows  int64
	Range time.Duration
}

func UnboundedRange() Bound { return Bound{Kind: BoundRange, Unbounded: true} }

func UnboundedRows() Bound { return Bound{Kind: BoundRows, Unbounded: true} }

// RowsPreceding bounds the window to the n rows before the current one. n
// of 0 is the current row only.
func RowsPreceding(n int64) Bound { return Bound{Kind: BoundRows, Rows: n} }

func RangePreceding(d time.Duration) Bound { return Bound{Kind: BoundRange, Range: d} }

func (b Bound) String() string {
	switch {
	case b.Unbounded:
		return b.Kind.String() + " UNBOUNDED PRECEDING"
	case b.Kind == BoundRows:
		return fmt.Sprintf("ROWS %d PRECEDING", b.Rows)
	default:
		return fmt.Sprintf("RANGE %s PRECEDING", b.Range)
	}
}

// Over is an over window: every row is aggregated together with the rows
// preceding it within the same key, ordered by a time attribute.
type Over struct {
	OrderBy   string
	Preceding Bound
	Alias     string
}

// OverWindow returns an over window ordered by the given time attribute.
func OverWindow(orderBy string, preceding Bound, alias string) Over {
	return Over{OrderBy: orderBy, Preceding: preceding, Alias: alias}
}

func (o Over) String() string {
	s := fmt.Sprintf("OVER(ORDER BY %s %s)", o.OrderBy, o.Preceding)
	if o.Alias != "" {
		s += " AS " + o.Alias
	}
	return s
}

func (o Over) Validate() error {
	if o.OrderBy == "" {
		return fmt.Errorf("%w: over window needs an order by attribute", ErrInvalidWindow)
	}
	b := o.Preceding
	if !b.Unbounded && b.Rows < 0 {
		return fmt.Errorf("%w: %s has negative preceding rows", ErrInvalidWindow, o)
	}
	if !b.Unbounded && b.Range < 0 {
		return fmt.Errorf("%w: %s has a negative preceding range", ErrInvalidWindow, o)
	}
	if (b.Kind == BoundRows && b.Range != 0) || (b.Kind == BoundRange && b.Rows != 0) {
		return fmt.Errorf("%w: %s bounds both rows and range", ErrInvalidWindow, o)
	}
	if b.Kind != BoundRows && b.Kind != BoundRange {
		return fmt.Errorf("%w: unknown bound kind %d", ErrInvalidWindow, b.Kind)
	}
	return nil
}
