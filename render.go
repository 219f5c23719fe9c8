package binrange

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MarshalJSON renders buckets in range order, as an object keyed by bucket
// key when the aggregation is keyed and as an array otherwise.
func (r *Result) MarshalJSON() ([]byte, error) {
	stream := json.BorrowStream(nil)
	defer json.ReturnStream(stream)

	stream.WriteObjectStart()
	if len(r.metadata) > 0 {
		stream.WriteObjectField("meta")
		stream.WriteVal(r.metadata)
		stream.WriteMore()
	}
	stream.WriteObjectField("buckets")
	if r.keyed {
		stream.WriteObjectStart()
		for i, b := range r.buckets {
			if i > 0 {
				stream.WriteMore()
			}
			stream.WriteObjectField(b.Key)
			r.writeBucket(stream, b, false)
		}
		stream.WriteObjectEnd()
	} else {
		stream.WriteArrayStart()
		for i, b := range r.buckets {
			if i > 0 {
				stream.WriteMore()
			}
			r.writeBucket(stream, b, true)
		}
		stream.WriteArrayEnd()
	}
	stream.WriteObjectEnd()

	if stream.Error != nil {
		return nil, stream.Error
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

func (r *Result) writeBucket(stream *jsoniter.Stream, b Bucket, withKey bool) {
	stream.WriteObjectStart()
	if withKey {
		stream.WriteObjectField("key")
		stream.WriteString(b.Key)
		stream.WriteMore()
	}
	if b.From != nil {
		stream.WriteObjectField("from")
		stream.WriteString(r.format.Format(b.From))
		stream.WriteMore()
	}
	if b.To != nil {
		stream.WriteObjectField("to")
		stream.WriteString(r.format.Format(b.To))
		stream.WriteMore()
	}
	stream.WriteObjectField("doc_count")
	stream.WriteUint64(b.DocCount)
	for _, sub := range b.Aggregations {
		stream.WriteMore()
		stream.WriteObjectField(sub.Name())
		stream.WriteVal(sub)
	}
	stream.WriteObjectEnd()
}
