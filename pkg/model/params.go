package model

import (
	"errors"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// ErrInvalidParams is returned when a hyperparameter candidate cannot be
// decoded into a learner's parameter struct.
var ErrInvalidParams = errors.New("model: invalid hyperparameters")

func errorf(prefix, msg string) error { return errors.New(prefix + ": " + msg) }

// decodeParams overlays params onto out. Keys that do not match a field are
// rejected, and numeric kinds are converted (a YAML "3" or 3.0 becomes int 3).
func decodeParams(params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		TagName:          "param",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}
