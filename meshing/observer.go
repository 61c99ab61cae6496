package meshing

// Observer receives progress from the pipeline and can request
// cooperative cancellation. The pipeline polls Cancelled between stages
// and inside long running loops; after it reports true the mesh is left
// in a consistent but unfinished state.
type Observer interface {
	SetTask(name string)
	SetPercent(p float64)
	Cancelled() bool
}

// NopObserver ignores progress and never cancels.
type NopObserver struct{}

func (NopObserver) SetTask(string)     {}
func (NopObserver) SetPercent(float64) {}
func (NopObserver) Cancelled() bool    { return false }
