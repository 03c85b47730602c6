package telemetry

import (
	"fmt"
)

// API is how gummie reports what happened while driving the site. Tests swap
// in a Recorder to assert on reports instead of parsing log output.
type API interface {
	// ReportBroken reports that a page no longer looks the way a component
	// expects, or a request it depends on failed.
	//
	// `id` names the component and operation, not the detail, e.g.
	// `session.login` when the login form disappeared. Details go into params.
	// Ids are lowercase `<type>.<operation>` with dashes inside the operation
	// (`session.post-listing`).
	ReportBroken(id string, params ...any)

	// ReportWarning reports something that did not stop the operation but may
	// point at site drift, e.g. `session.discard-draft` failing.
	ReportWarning(id string, params ...any)

	// ReportDebug reports a workflow step, only shown with --verbose.
	ReportDebug(msg string, params ...any)

	// ReportCount reports a gauge-like value such as the number of owned ads.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id and message with a namespace ("gumtree: ...").
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) qualify(id string) string {
	return fmt.Sprintf("%s: %s", s.namespace, id)
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.qualify(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.qualify(id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(s.qualify(msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.qualify(id), count)
}
