package telemetry

// Report is a single call made against a Recorder.
type Report struct {
	Kind   string
	Id     string
	Params []any
}

// Recorder is an API that keeps every report in memory, it is meant to be
// used by tests that need to assert something was (or was not) reported.
type Recorder struct {
	Reports []Report
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.Reports = append(r.Reports, Report{Kind: "broken", Id: id, Params: params})
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.Reports = append(r.Reports, Report{Kind: "warning", Id: id, Params: params})
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	r.Reports = append(r.Reports, Report{Kind: "debug", Id: msg, Params: params})
}

func (r *Recorder) ReportCount(id string, count int64) {
	r.Reports = append(r.Reports, Report{Kind: "count", Id: id, Params: []any{count}})
}

// Filter returns the ids of all reports of the given kind, in order.
func (r *Recorder) Filter(kind string) []string {
	var ids []string
	for _, rep := range r.Reports {
		if rep.Kind == kind {
			ids = append(ids, rep.Id)
		}
	}
	return ids
}
