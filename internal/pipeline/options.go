package pipeline

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"TimeSeriesML/internal/model"
	"TimeSeriesML/internal/splitter"
)

// DefaultSeed seeds the shuffle and random split when none is configured.
const DefaultSeed int64 = 314

// Options controls scaling, windowing and splitting.
type Options struct {
	NSteps         int      `json:"n_steps" validate:"gte=1"`
	Scale          bool     `json:"scale"`
	Shuffle        bool     `json:"shuffle"`
	LookupStep     int      `json:"lookup_step" validate:"gte=1"`
	SplitByDate    bool     `json:"split_by_date"`
	TestSize       float64  `json:"test_size" validate:"gt=0,lt=1"`
	FeatureColumns []string `json:"feature_columns" validate:"min=1,dive,required"`
	Seed           int64    `json:"seed"`
}

// DefaultOptions returns the standard configuration: 50-day windows predicting
// one day ahead from price and volume, scaled, split by date and shuffled.
func DefaultOptions() Options {
	return Options{
		NSteps:         50,
		Scale:          true,
		Shuffle:        true,
		LookupStep:     1,
		SplitByDate:    true,
		TestSize:       0.2,
		FeatureColumns: []string{model.ColAdjClose, model.ColVolume, model.ColOpen, model.ColHigh, model.ColLow},
		Seed:           DefaultSeed,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate reports the first invalid option as a *model.ConfigError.
func (o Options) Validate() error {
	err := validate.Struct(o)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate options: %w", err)
	}
	fe := verrs[0]
	field := fe.Field()
	if i := strings.IndexByte(field, '['); i > 0 {
		field = field[:i]
	}
	return &model.ConfigError{Field: field, Value: fmt.Sprint(fe.Value()), Reason: reason(fe)}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return "must be >= " + fe.Param()
	case "gt":
		return "must be > " + fe.Param()
	case "lt":
		return "must be < " + fe.Param()
	case "min":
		return "must have at least " + fe.Param() + " entry"
	case "required":
		return "must not be empty"
	default:
		return "failed validation: " + fe.Tag()
	}
}

func (o Options) split() splitter.Options {
	return splitter.Options{SplitByDate: o.SplitByDate, TestSize: o.TestSize, Shuffle: o.Shuffle}
}
