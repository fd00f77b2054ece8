package errors

// ParseError creates a non-fatal error for malformed source text.
func ParseError(message string) *BuildError {
	return New(CategoryParse, SeverityError, message)
}

// WrapParse wraps a parser failure as a non-fatal parse error.
func WrapParse(err error, message string) *BuildError {
	return Wrap(err, CategoryParse, SeverityError, message)
}

// ValidationError creates a non-fatal schema violation error.
func ValidationError(message string) *BuildError {
	return New(CategoryValidation, SeverityError, message)
}

// TypeError creates a fatal error: the top-level token of a schema-typed
// source is not an object. This aborts the current file only.
func TypeError(message string) *BuildError {
	return New(CategoryType, SeverityFatal, message)
}

// ContentError creates a non-fatal content error (missing heading,
// unresolved merge-conflict marker, reserved "404" filename). The page is
// still built where possible.
func ContentError(message string) *BuildError {
	return New(CategoryContent, SeverityError, message)
}

// CollaboratorError wraps an opaque failure from an external lookup. The
// caller substitutes a default value and continues.
func CollaboratorError(err error, message string) *BuildError {
	return Wrap(err, CategoryCollaborator, SeverityWarning, message)
}

// InternalError wraps an unexpected failure inside the pipeline itself.
func InternalError(err error, message string) *BuildError {
	return Wrap(err, CategoryInternal, SeverityFatal, message)
}
