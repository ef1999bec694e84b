package feeders

import (
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/golobby/cast"
)

var durationType = reflect.TypeOf(time.Duration(0))

// EnvFeeder reads environment variables named by `env` struct tags.
// With a Prefix, the tag API_URL is looked up as <PREFIX>_API_URL.
// Empty variables are ignored so defaults survive.
type EnvFeeder struct {
	Prefix string
}

// NewEnvFeeder creates an EnvFeeder with the given prefix (may be empty).
func NewEnvFeeder(prefix string) EnvFeeder {
	return EnvFeeder{Prefix: prefix}
}

// Feed populates structure, which must be a pointer to a struct.
func (f EnvFeeder) Feed(structure any) error {
	return feedStruct(structure, f.Prefix, os.LookupEnv)
}

type lookupFunc func(key string) (string, bool)

func feedStruct(structure any, prefix string, lookup lookupFunc) error {
	rv := reflect.ValueOf(structure)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return wrapStructureError(structure)
	}
	return processStructFields(rv.Elem(), strings.ToUpper(prefix), lookup)
}

func processStructFields(rv reflect.Value, prefix string, lookup lookupFunc) error {
	rt := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		field := rv.Field(i)
		fieldType := rt.Field(i)
		if !fieldType.IsExported() {
			continue
		}
		if err := processField(field, &fieldType, prefix, lookup); err != nil {
			return err
		}
	}
	return nil
}

func processField(field reflect.Value, fieldType *reflect.StructField, prefix string, lookup lookupFunc) error {
	envTag, hasTag := fieldType.Tag.Lookup("env")
	if envTag == "-" {
		return nil
	}

	switch {
	case field.Kind() == reflect.Struct:
		return processStructFields(field, prefix, lookup)
	case field.Kind() == reflect.Pointer && field.Type().Elem().Kind() == reflect.Struct:
		// Allocate lazily so an absent section stays nil.
		target := field
		if field.IsNil() {
			target = reflect.New(field.Type().Elem())
		}
		before := reflect.Indirect(target).Interface()
		if err := processStructFields(target.Elem(), prefix, lookup); err != nil {
			return err
		}
		if field.IsNil() && !reflect.DeepEqual(before, target.Elem().Interface()) {
			field.Set(target)
		}
		return nil
	}

	if !hasTag || envTag == "" {
		return nil
	}

	envName := strings.ToUpper(envTag)
	if prefix != "" {
		envName = prefix + "_" + envName
	}

	value, ok := lookup(envName)
	if !ok || value == "" {
		return nil
	}
	if err := setFieldValue(field, value); err != nil {
		return wrapFieldError(envName, err)
	}
	return nil
}

// setFieldValue converts raw to the field's type. Durations are parsed with
// time.ParseDuration; everything else goes through golobby/cast.
func setFieldValue(field reflect.Value, raw string) error {
	if !field.CanSet() {
		return ErrEnvFieldCannotBeSet
	}

	if field.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
	default:
		return ErrEnvUnsupportedType
	}

	converted, err := cast.FromType(raw, field.Type())
	if err != nil {
		return err
	}
	field.Set(reflect.ValueOf(converted).Convert(field.Type()))
	return nil
}
