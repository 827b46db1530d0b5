package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// Decode unmarshals a JSON payload into dst. A type mismatch on a known
// field is a validation outcome, reported through Errors; anything else
// (syntax errors, empty body) is returned as an error for the caller to
// treat as a malformed request.
func Decode(r io.Reader, dst any) (Errors, error) {
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			errs := Errors{}
			errs.Add(typeErr.Field, typeMessage(typeErr.Type))
			return errs, nil
		}
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return nil, nil
}

// typeMessage picks the validation message for a mismatched target type.
func typeMessage(t reflect.Type) string {
	if t == timeType {
		return MsgNotDatetime
	}
	switch t.Kind() {
	case reflect.String:
		return MsgNotString
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return MsgNotNumber
	default:
		return fmt.Sprintf("Not a valid %s.", t.Kind())
	}
}
