package sentinel

import "github.com/rsms/go-bits"

// OptField indexes one field of Options for the purposes of the three-way
// merge (request options ∘ spec options ∘ process defaults) in spec.md
// §4.5. Ported from the teacher's FieldSet (fieldset.go), backed by
// github.com/rsms/go-bits so Len doesn't need its own popcount loop.
type OptField int

const (
	FieldTimeoutMs OptField = iota
	FieldRetryDelayMs
	FieldConnOpts
	FieldAddMissingSentinels
)

// OptFieldSet tracks which Options fields a caller explicitly assigned, so
// that an explicit zero (e.g. timeout-ms: 0) can be told apart from "not
// set" during the merge.
type OptFieldSet uint64

func (f OptFieldSet) Len() int { return bits.PopcountUint64(uint64(f)) }

func (f OptFieldSet) With(field OptField) OptFieldSet {
	return f | (1 << field)
}

func (f OptFieldSet) Has(field OptField) bool {
	return f&(1<<field) != 0
}

// Options holds the resolver knobs named in spec.md §4.5: timeout-ms,
// retry-delay-ms, conn-opts, and add-missing-sentinels?. Callback tables
// are handled separately (see Callbacks in callback.go) since, unlike
// these fields, they layer rather than override.
type Options struct {
	TimeoutMs           int
	RetryDelayMs        int
	ConnOpts            ConnOpts
	AddMissingSentinels bool

	set OptFieldSet
}

func (o Options) WithTimeoutMs(ms int) Options {
	o.TimeoutMs, o.set = ms, o.set.With(FieldTimeoutMs)
	return o
}

func (o Options) WithRetryDelayMs(ms int) Options {
	o.RetryDelayMs, o.set = ms, o.set.With(FieldRetryDelayMs)
	return o
}

func (o Options) WithConnOpts(c ConnOpts) Options {
	o.ConnOpts, o.set = c, o.set.With(FieldConnOpts)
	return o
}

func (o Options) WithAddMissingSentinels(v bool) Options {
	o.AddMissingSentinels, o.set = v, o.set.With(FieldAddMissingSentinels)
	return o
}

// DefaultOptions returns the process-wide resolver defaults.
func DefaultOptions() Options {
	return Options{}.
		WithTimeoutMs(1000).
		WithRetryDelayMs(250).
		WithAddMissingSentinels(true)
}

// Merge overlays request atop spec atop defaults: for each field, the
// highest-priority Options value that explicitly set it wins. Unset fields
// fall through to the next layer down.
func Merge(request, spec, defaults Options) Options {
	out := defaults
	for _, layer := range [...]Options{spec, request} {
		if layer.set.Has(FieldTimeoutMs) {
			out = out.WithTimeoutMs(layer.TimeoutMs)
		}
		if layer.set.Has(FieldRetryDelayMs) {
			out = out.WithRetryDelayMs(layer.RetryDelayMs)
		}
		if layer.set.Has(FieldConnOpts) {
			out = out.WithConnOpts(layer.ConnOpts)
		}
		if layer.set.Has(FieldAddMissingSentinels) {
			out = out.WithAddMissingSentinels(layer.AddMissingSentinels)
		}
	}
	return out
}
