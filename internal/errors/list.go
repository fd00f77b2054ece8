package errors

// List is an ordered per-file error collector. Every pipeline stage appends
// to one List instead of short-circuiting, so a file yields the most
// complete diagnostic report possible. A List is owned by exactly one
// file's pipeline and is not safe for concurrent use.
type List struct {
	errs []*BuildError
}

// NewList creates an empty error list.
func NewList() *List {
	return &List{}
}

// Add appends one error. Nil errors are ignored. Plain errors are wrapped
// as internal errors so the report stays uniform.
func (l *List) Add(err error) {
	if err == nil {
		return
	}
	if be, ok := err.(*BuildError); ok {
		l.errs = append(l.errs, be)
		return
	}
	l.errs = append(l.errs, Wrap(err, CategoryInternal, SeverityError, "unclassified error"))
}

// AddAll appends every error in errs, preserving order.
func (l *List) AddAll(errs []error) {
	for _, err := range errs {
		l.Add(err)
	}
}

// Merge appends every error from other, preserving order.
func (l *List) Merge(other *List) {
	if other == nil {
		return
	}
	l.errs = append(l.errs, other.errs...)
}

// Errors returns the collected errors in insertion order.
func (l *List) Errors() []*BuildError {
	return l.errs
}

// Len returns the number of collected errors.
func (l *List) Len() int {
	return len(l.errs)
}

// HasFatal reports whether any collected error aborts the file.
func (l *List) HasFatal() bool {
	for _, e := range l.errs {
		if e.IsFatal() {
			return true
		}
	}
	return false
}
