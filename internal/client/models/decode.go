package models

import (
	"github.com/mitchellh/mapstructure"
)

// DecodeFields writes values into dst, a pointer to a struct, matching keys
// against the JSON field names. Strings are converted to the field type.
// Keys dst does not declare fail the whole decode.
func DecodeFields(values map[string]any, dst any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           dst,
	})
	if err != nil {
		return err
	}
	return dec.Decode(values)
}
