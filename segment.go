package binrange

import (
	"bytes"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/pkg/errors"
)

// MemorySegment is an immutable in-memory partition holding, per field, the
// sorted binary values of each document.
type MemorySegment struct {
	maxDoc uint32
	fields map[string]*memoryField
}

type memoryField struct {
	typ     ValuesSourceType
	present *roaring.Bitmap
	// values of doc d are values[offsets[d]:offsets[d+1]]
	offsets []uint32
	values  [][]byte
}

func (s *MemorySegment) MaxDoc() uint32 { return s.maxDoc }

func (s *MemorySegment) ValuesSource(field string) (ValuesSource, bool) {
	f, ok := s.fields[field]
	if !ok {
		return nil, false
	}
	return memorySource{field: f, maxDoc: s.maxDoc}, true
}

type memorySource struct {
	field  *memoryField
	maxDoc uint32
}

func (s memorySource) Type() ValuesSourceType { return s.field.typ }

func (s memorySource) Values() BinaryValues {
	return &memoryValues{field: s.field, maxDoc: s.maxDoc}
}

type memoryValues struct {
	field  *memoryField
	maxDoc uint32
	next   uint32
	end    uint32
}

func (v *memoryValues) AdvanceExact(doc uint32) (bool, error) {
	if doc >= v.maxDoc {
		return false, errors.Errorf("doc %d out of range [0, %d)", doc, v.maxDoc)
	}
	if !v.field.present.Contains(doc) {
		v.next, v.end = 0, 0
		return false, nil
	}
	v.next, v.end = v.field.offsets[doc], v.field.offsets[doc+1]
	return true, nil
}

func (v *memoryValues) ValueCount() int { return int(v.end - v.next) }

func (v *memoryValues) NextValue() ([]byte, error) {
	if v.next >= v.end {
		return nil, errors.New("no more values for current doc")
	}
	val := v.field.values[v.next]
	v.next++
	return val, nil
}

// SegmentBuilder accumulates documents for a MemorySegment. A declared field
// is mapped even if no document has a value for it.
type SegmentBuilder struct {
	maxDoc uint32
	fields map[string]*fieldBuilder
}

type fieldBuilder struct {
	typ  ValuesSourceType
	docs map[uint32][][]byte
}

func NewSegmentBuilder() *SegmentBuilder {
	return &SegmentBuilder{fields: make(map[string]*fieldBuilder)}
}

func (b *SegmentBuilder) DeclareField(name string, typ ValuesSourceType) *SegmentBuilder {
	if _, ok := b.fields[name]; !ok {
		b.fields[name] = &fieldBuilder{typ: typ, docs: make(map[uint32][][]byte)}
	}
	return b
}

// AddDocument appends a document and returns its id. Values are copied.
func (b *SegmentBuilder) AddDocument(values map[string][][]byte) (uint32, error) {
	for name := range values {
		if _, ok := b.fields[name]; !ok {
			return 0, errors.Errorf("field %s is not declared", name)
		}
	}
	doc := b.maxDoc
	for name, vals := range values {
		if len(vals) == 0 {
			continue
		}
		copied := make([][]byte, len(vals))
		for i, v := range vals {
			copied[i] = append([]byte{}, v...)
		}
		b.fields[name].docs[doc] = copied
	}
	b.maxDoc++
	return doc, nil
}

func (b *SegmentBuilder) Build() *MemorySegment {
	seg := &MemorySegment{
		maxDoc: b.maxDoc,
		fields: make(map[string]*memoryField, len(b.fields)),
	}
	for name, fb := range b.fields {
		f := &memoryField{
			typ:     fb.typ,
			present: roaring.New(),
			offsets: make([]uint32, b.maxDoc+1),
		}
		for doc := uint32(0); doc < b.maxDoc; doc++ {
			vals := fb.docs[doc]
			if len(vals) > 0 {
				f.present.Add(doc)
				slices.SortFunc(vals, bytes.Compare)
				f.values = append(f.values, vals...)
			}
			f.offsets[doc+1] = uint32(len(f.values))
		}
		f.present.RunOptimize()
		seg.fields[name] = f
	}
	return seg
}
