package binrange

import "github.com/pkg/errors"

var (
	ErrUnknownValuesSourceType = errors.New("binrange: no aggregator registered for values source type")
	ErrIncompatibleRanges      = errors.New("binrange: results were built from different range tables")
	ErrNegativeOrdinal         = errors.New("binrange: owning bucket ordinal must be non-negative")
	ErrOrdinalOverflow         = errors.New("binrange: owning bucket ordinal overflows the flat ordinal space")
	ErrInvalidRange            = errors.New("binrange: invalid range")
	ErrInvalidConfig           = errors.New("binrange: invalid config")
	ErrNoPartitions            = errors.New("binrange: no partitions to aggregate")
)
