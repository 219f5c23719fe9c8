package binrange

type Bucket struct {
	Key          string
	From         []byte
	To           []byte
	DocCount     uint64
	Aggregations []Aggregation
}

func newBucket(r Range, f Formatter, docCount uint64, subs []Aggregation) Bucket {
	return Bucket{
		Key:          bucketKey(r, f),
		From:         r.From,
		To:           r.To,
		DocCount:     docCount,
		Aggregations: subs,
	}
}

func (b Bucket) Aggregation(name string) (Aggregation, bool) {
	for _, a := range b.Aggregations {
		if a.Name() == name {
			return a, true
		}
	}
	return nil, false
}

// A Result with no buckets is the empty aggregation.
type Result struct {
	name        string
	format      Formatter
	keyed       bool
	buckets     []Bucket
	metadata    Metadata
	fingerprint uint64
}

func newResult(name string, f Formatter, keyed bool, buckets []Bucket, md Metadata, fingerprint uint64) *Result {
	return &Result{
		name:        name,
		format:      f,
		keyed:       keyed,
		buckets:     buckets,
		metadata:    md,
		fingerprint: fingerprint,
	}
}

func (r *Result) Name() string { return r.name }

func (r *Result) Format() Formatter { return r.format }

func (r *Result) Keyed() bool { return r.keyed }

// must not be modified
func (r *Result) Buckets() []Bucket { return r.buckets }

func (r *Result) Bucket(key string) (Bucket, bool) {
	for _, b := range r.buckets {
		if b.Key == key {
			return b, true
		}
	}
	return Bucket{}, false
}

func (r *Result) Metadata() Metadata { return r.metadata.clone() }

func (r *Result) FormatFrom(b Bucket) string {
	if b.From == nil {
		return ""
	}
	return r.format.Format(b.From)
}

func (r *Result) FormatTo(b Bucket) string {
	if b.To == nil {
		return ""
	}
	return r.format.Format(b.To)
}
