package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *SiteError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigRequired(field string) *SiteError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func ValidationFailed(field, reason string) *SiteError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Theme errors

func TemplateMissing(name string) *SiteError {
	return New(CategoryTheme, SeverityFatal, "required template missing").
		WithContext("template", name)
}

// Collaborator errors

func SourceFailed(source string, cause error) *SiteError {
	return Wrap(cause, CategorySource, SeverityFatal, "content source failed").
		WithContext("source", source)
}

// SourceSkipped marks a failed source that a best-effort run continued past.
func SourceSkipped(source string, cause error) *SiteError {
	return Wrap(cause, CategorySource, SeverityWarning, "content source skipped").
		WithContext("source", source)
}

// ItemSkipped marks a single source element dropped from the run.
func ItemSkipped(source string, index int, reason string) *SiteError {
	return New(CategorySource, SeverityWarning, "content item skipped").
		WithContext("source", source).
		WithContext("item", index).
		WithContext("reason", reason)
}

func WriteFailed(path string, cause error) *SiteError {
	return Wrap(cause, CategoryStorage, SeverityError, "page write failed").
		WithContext("path", path)
}

// Generation errors

func BuildFailed(stage string, cause error) *SiteError {
	return Wrap(cause, CategoryBuild, SeverityFatal, "build failed").
		WithContext("stage", stage)
}

// Internal errors

func InternalError(message string, cause error) *SiteError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
