// Package export writes prepared datasets as Apache Arrow IPC streams.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/ipc"
	"github.com/apache/arrow/go/v14/arrow/memory"

	"TimeSeriesML/internal/logger"
	"TimeSeriesML/internal/pipeline"
)

// Split names written to the split column. SplitLast rows carry the final
// sequence and have a null label.
const (
	SplitTrain = "train"
	SplitTest  = "test"
	SplitLast  = "last"
)

// Fixed leading columns; one float32 column per feature follows, then label.
const (
	ColSplit    = "split"
	ColSequence = "sequence"
	ColStep     = "step"
	ColLabel    = "label"
)

// Writer serialises pipeline results in long format: one row per
// (sequence, step) with the sequence label repeated on each step.
type Writer struct {
	mem memory.Allocator
	log *logger.Logger
}

func NewWriter(log *logger.Logger) *Writer {
	if log == nil {
		log = logger.Nop()
	}
	return &Writer{mem: memory.NewGoAllocator(), log: log}
}

// Schema returns the export schema for the given feature columns.
func Schema(features []string) *arrow.Schema {
	fields := []arrow.Field{
		{Name: ColSplit, Type: arrow.BinaryTypes.String},
		{Name: ColSequence, Type: arrow.PrimitiveTypes.Uint32},
		{Name: ColStep, Type: arrow.PrimitiveTypes.Uint32},
	}
	for _, f := range features {
		fields = append(fields, arrow.Field{Name: f, Type: arrow.PrimitiveTypes.Float32})
	}
	fields = append(fields, arrow.Field{Name: ColLabel, Type: arrow.PrimitiveTypes.Float32, Nullable: true})
	return arrow.NewSchema(fields, nil)
}

// WriteDataset writes one record batch per non-empty split and returns the
// number of rows written.
func (w *Writer) WriteDataset(out io.Writer, res *pipeline.Result) (int64, error) {
	schema := Schema(res.Features)
	iw := ipc.NewWriter(out, ipc.WithSchema(schema), ipc.WithAllocator(w.mem))

	var total int64
	batches := []struct {
		split string
		x     [][][]float32
		y     []float32
	}{
		{SplitTrain, res.XTrain, res.YTrain},
		{SplitTest, res.XTest, res.YTest},
	}
	if len(res.LastSequence) > 0 {
		batches = append(batches, struct {
			split string
			x     [][][]float32
			y     []float32
		}{SplitLast, [][][]float32{res.LastSequence}, nil})
	}

	for _, b := range batches {
		if len(b.x) == 0 {
			continue
		}
		rec, err := w.record(schema, len(res.Features), b.split, b.x, b.y)
		if err != nil {
			iw.Close()
			return total, fmt.Errorf("build %s batch: %w", b.split, err)
		}
		err = iw.Write(rec)
		total += rec.NumRows()
		rec.Release()
		if err != nil {
			iw.Close()
			return total, fmt.Errorf("write %s batch: %w", b.split, err)
		}
	}
	if err := iw.Close(); err != nil {
		return total, fmt.Errorf("close arrow writer: %w", err)
	}
	return total, nil
}

// WriteFile writes the dataset to path, creating parent directories.
func (w *Writer) WriteFile(path string, res *pipeline.Result) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create export file: %w", err)
	}
	n, err := w.WriteDataset(f, res)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, err
	}
	w.log.Info("dataset exported",
		logger.String("symbol", res.Symbol),
		logger.String("path", path),
		logger.Int("rows", int(n)),
	)
	return n, nil
}

// record builds one batch. A nil y marks every row's label null.
func (w *Writer) record(schema *arrow.Schema, width int, split string, x [][][]float32, y []float32) (arrow.Record, error) {
	b := array.NewRecordBuilder(w.mem, schema)
	defer b.Release()

	splitB := b.Field(0).(*array.StringBuilder)
	seqB := b.Field(1).(*array.Uint32Builder)
	stepB := b.Field(2).(*array.Uint32Builder)
	labelB := b.Field(3 + width).(*array.Float32Builder)

	for i, window := range x {
		for s, step := range window {
			if len(step) != width {
				return nil, fmt.Errorf("sequence %d step %d has %d features, want %d", i, s, len(step), width)
			}
			splitB.Append(split)
			seqB.Append(uint32(i))
			stepB.Append(uint32(s))
			for f, v := range step {
				b.Field(3 + f).(*array.Float32Builder).Append(v)
			}
			if y == nil {
				labelB.AppendNull()
			} else {
				labelB.Append(y[i])
			}
		}
	}
	return b.NewRecord(), nil
}
