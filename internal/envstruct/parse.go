// Package envstruct populates configuration structs from environment
// variables using struct tags.
package envstruct

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrEnvNotSet is returned when a tagged field has no environment
	// variable and no envDefault fallback.
	ErrEnvNotSet = errors.New("environment variable not set")
	// ErrInvalidValue is returned when v is not a pointer to a struct of
	// settable string fields.
	ErrInvalidValue = errors.New("v must be a pointer to a struct")
)

// Populate fills the fields of the pointer to struct v from the environment.
//
// lookupEnv has the same signature as [os.LookupEnv]. Fields must be tagged
// `env:"NAME"`; when NAME is unset the `envDefault:"value"` tag is used, and
// without either the field contributes an ErrEnvNotSet to the joined error.
func Populate(v any, lookupEnv func(string) (string, bool)) error {
	ptrRef := reflect.ValueOf(v)
	if ptrRef.Kind() != reflect.Ptr {
		return fmt.Errorf("%w: not pointer: %v", ErrInvalidValue, v)
	}
	ref := ptrRef.Elem()
	if ref.Kind() != reflect.Struct {
		return fmt.Errorf("%w: not struct: %v", ErrInvalidValue, v)
	}

	refType := ref.Type()
	var errs []error
	for i := range refType.NumField() {
		field := ref.Field(i)
		typeField := refType.Field(i)

		envVarName, ok := typeField.Tag.Lookup("env")
		if !ok {
			continue
		}
		if !field.CanSet() {
			errs = append(errs, fmt.Errorf("%w: cannot set field: %s", ErrInvalidValue, typeField.Name))
			continue
		}
		if field.Kind() != reflect.String {
			errs = append(errs, fmt.Errorf("%w: only strings are supported - field: %s, type: %s, env: %s",
				ErrInvalidValue, typeField.Name, field.Kind().String(), envVarName))
			continue
		}

		val, err := lookup(envVarName, typeField.Tag, lookupEnv)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		field.Set(reflect.ValueOf(val))
	}

	if len(errs) != 0 {
		return errors.Join(errs...)
	}
	return nil
}

func lookup(name string, tag reflect.StructTag, lookupEnv func(string) (string, bool)) (string, error) {
	value, ok := lookupEnv(name)
	if !ok {
		value, ok = tag.Lookup("envDefault")
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrEnvNotSet, name)
		}
	}
	return value, nil
}
