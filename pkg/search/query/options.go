package query

const (
	DefaultIDField         = "id"
	DefaultAggregationName = "result"
)

type options struct {
	idField         string
	typeName        string
	aggregationName string
}

// Option configures Assemble.
type Option func(*options)

// WithIDField sets the identifier column used as the sort tiebreak.
func WithIDField(field string) Option {
	return func(o *options) {
		if field != "" {
			o.idField = field
		}
	}
}

// WithTypeName sets the key of the aggregation filter wrapper.
func WithTypeName(name string) Option {
	return func(o *options) {
		o.typeName = name
	}
}

// WithAggregationName sets the key of a named aggregation.
func WithAggregationName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.aggregationName = name
		}
	}
}

func newOptions(opts []Option) options {
	o := options{idField: DefaultIDField, aggregationName: DefaultAggregationName}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
