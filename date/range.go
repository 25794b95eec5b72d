package date

import "fmt"

// Range is an inclusive range of days.
type Range struct{ From, To Date }

// Contains reports whether d falls in the range, boundaries included.
func (r Range) Contains(d Date) bool { return !d.Before(r.From) && !d.After(r.To) }

func (r Range) String() string { return fmt.Sprintf("%s..%s", r.From, r.To) }
