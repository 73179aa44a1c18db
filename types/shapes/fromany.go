package shapes

import (
	"reflect"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// FromAnyValue attempts to convert a Go "any" value to its expected shape.
// Accepted values are plain-old-data (POD) types (ints, floats, bool), slices (or multiple level of slices) of POD.
//
// Example:
//
//	shape := shapes.FromAnyValue([][]float64{{0, 0}}) // Returns shape (Float64)[1 2]
func FromAnyValue(v any) (shape Shape, err error) {
	if v == nil {
		return Invalid(), errors.New("cannot infer the shape of a nil value")
	}
	err = shapeForAnyValueRecursive(&shape, reflect.ValueOf(v), reflect.TypeOf(v))
	return
}

func shapeForAnyValueRecursive(shape *Shape, v reflect.Value, t reflect.Type) error {
	if t.Kind() != reflect.Slice {
		// If it's not a slice, it must be one of the supported scalar types.
		shape.DType = dtypes.FromGoType(t)
		if shape.DType == dtypes.InvalidDType {
			return errors.Errorf("cannot convert type %q to a valid shape (maybe type not supported yet?)", t)
		}
		return nil
	}

	// Slice: recurse into its element type (again slices or a supported POD).
	t = t.Elem()
	shape.Dimensions = append(shape.Dimensions, v.Len())
	shapePrefix := shape.Clone()

	// The first element is the reference.
	if v.Len() == 0 {
		return errors.Errorf("value with empty slice not valid for shape conversion: %T -- it wouldn't be possible to figure out the inner dimensions", v.Interface())
	}
	if err := shapeForAnyValueRecursive(shape, v.Index(0), t); err != nil {
		return err
	}

	// Other elements must have the same shape as the first one.
	for ii := 1; ii < v.Len(); ii++ {
		shapeTest := shapePrefix.Clone()
		if err := shapeForAnyValueRecursive(&shapeTest, v.Index(ii), t); err != nil {
			return err
		}
		if !shape.Equal(shapeTest) {
			return errors.Errorf("sub-slices have irregular shapes, found shapes %q, and %q", shape, shapeTest)
		}
	}
	return nil
}

// FlattenAnyValue returns the values of v (a POD or a regular multi-level slice of POD) flattened
// in row-major order and converted to float64, along with its shape.
func FlattenAnyValue(v any) (flat []float64, shape Shape, err error) {
	shape, err = FromAnyValue(v)
	if err != nil {
		return nil, shape, err
	}
	flat = make([]float64, 0, shape.Size())
	var flatten func(rv reflect.Value) error
	flatten = func(rv reflect.Value) error {
		if rv.Kind() == reflect.Slice {
			for ii := range rv.Len() {
				if err := flatten(rv.Index(ii)); err != nil {
					return err
				}
			}
			return nil
		}
		f, err := scalarToFloat64(rv)
		if err != nil {
			return err
		}
		flat = append(flat, f)
		return nil
	}
	err = flatten(reflect.ValueOf(v))
	return
}

func scalarToFloat64(rv reflect.Value) (float64, error) {
	if f, ok := rv.Interface().(interface{ Float32() float32 }); ok {
		// Float16 and BFloat16 values: checked first since their kind is Uint16.
		return float64(f.Float32()), nil
	}
	switch rv.Kind() {
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	}
	return 0, errors.Errorf("cannot convert value of type %s to float64", rv.Type())
}
