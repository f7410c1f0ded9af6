package vision

// AnalysisError reports a failed full analysis of the reference image.
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string { return "image analysis: " + e.Err.Error() }
func (e *AnalysisError) Unwrap() error { return e.Err }

// FeatureExtractionError reports a failed consistency digest.
type FeatureExtractionError struct {
	Err error
}

func (e *FeatureExtractionError) Error() string { return "feature extraction: " + e.Err.Error() }
func (e *FeatureExtractionError) Unwrap() error { return e.Err }
