package model

// IngestionResult is the outcome of one upload. Errors are structural and,
// under the abort policy, leave Rows empty; Warnings are row-level or
// coverage anomalies that never block other rows.
type IngestionResult[T any] struct {
	Rows      []T      `json:"rows"`
	Warnings  []string `json:"warnings"`
	Errors    []string `json:"errors"`
	TotalRows int      `json:"total_rows"`
	// RejectedRows counts rows the normalizer refused. Rows dropped by the
	// abort policy are not included.
	RejectedRows int `json:"rejected_rows"`
}

// OK reports whether the upload produced no structural errors.
func (r IngestionResult[T]) OK() bool {
	return len(r.Errors) == 0
}

// Rejected returns how many candidate data rows failed normalization.
func (r IngestionResult[T]) Rejected() int {
	return r.RejectedRows
}
