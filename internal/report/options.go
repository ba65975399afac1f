package report

// Option applies a configuration option to the Reporter.
type Option func(*Reporter)

// WithUnit sets the currency suffix printed after amounts.
func WithUnit(unit string) Option {
	return func(r *Reporter) {
		if unit != "" {
			r.unit = unit
		}
	}
}

// WithTimeLayout sets the layout used for the last update time.
func WithTimeLayout(layout string) Option {
	return func(r *Reporter) {
		if layout != "" {
			r.timeLayout = layout
		}
	}
}
