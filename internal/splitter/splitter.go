// Package splitter partitions windowed sequences into train and test sets.
package splitter

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"

	"TimeSeriesML/internal/model"
	"TimeSeriesML/internal/window"
)

// Options controls how sequences are partitioned.
type Options struct {
	SplitByDate bool
	TestSize    float64
	Shuffle     bool
}

// Split is the partitioned dataset. Features are [sequence][step][feature]
// with the date column removed.
type Split struct {
	XTrain    [][][]float32
	YTrain    []float32
	XTest     [][][]float32
	YTest     []float32
	TrainIdx  []int
	TestIdx   []int
	TestTable *model.Table
}

// Partition returns the dataset indices that go to train and test.
// By date, the first floor((1-TestSize)*n) sequences train and the rest test.
// Otherwise a random permutation picks ceil(TestSize*n) test sequences.
// Shuffling permutes index arrays, so a sequence and its label always move together.
func Partition(n int, opts Options, rng *rand.Rand) (train, test []int, err error) {
	if opts.TestSize <= 0 || opts.TestSize >= 1 {
		return nil, nil, &model.ConfigError{
			Field:  "test_size",
			Value:  strconv.FormatFloat(opts.TestSize, 'g', -1, 64),
			Reason: "must be in (0, 1)",
		}
	}
	if opts.SplitByDate {
		cut := int(math.Floor((1 - opts.TestSize) * float64(n)))
		train = seq(0, cut)
		test = seq(cut, n)
		if opts.Shuffle {
			rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
			rng.Shuffle(len(test), func(i, j int) { test[i], test[j] = test[j], test[i] })
		}
		return train, test, nil
	}

	nTest := int(math.Ceil(opts.TestSize * float64(n)))
	perm := rng.Perm(n)
	test = perm[:nTest]
	train = perm[nTest:]
	if !opts.Shuffle {
		sort.Ints(train)
		sort.Ints(test)
	}
	return train, test, nil
}

// Apply partitions ds and looks up, for every test sequence, the enriched row
// its window ends on.
func Apply(ds *window.Dataset, enriched *model.Table, opts Options, rng *rand.Rand) (*Split, error) {
	train, test, err := Partition(ds.Len(), opts, rng)
	if err != nil {
		return nil, err
	}
	s := &Split{TrainIdx: train, TestIdx: test}
	s.XTrain, s.YTrain = gather(ds, train)
	s.XTest, s.YTest = gather(ds, test)

	byDate := enriched.RowByDate()
	dc := ds.DateColumn()
	rows := make([]int, len(test))
	for i, idx := range test {
		w := ds.Windows[idx]
		unix := int64(w[len(w)-1][dc])
		r, ok := byDate[unix]
		if !ok {
			return nil, fmt.Errorf("test sequence %d: no row dated %d", idx, unix)
		}
		rows[i] = r
	}
	s.TestTable = enriched.Select(rows)
	return s, nil
}

// gather copies the selected sequences as float32, dropping the date column.
func gather(ds *window.Dataset, idx []int) ([][][]float32, []float32) {
	width := len(ds.Features)
	x := make([][][]float32, len(idx))
	y := make([]float32, len(idx))
	for i, k := range idx {
		w := ds.Windows[k]
		steps := make([][]float32, len(w))
		for s, row := range w {
			v := make([]float32, width)
			for f := 0; f < width; f++ {
				v[f] = float32(row[f])
			}
			steps[s] = v
		}
		x[i] = steps
		y[i] = float32(ds.Labels[k])
	}
	return x, y
}

func seq(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}
