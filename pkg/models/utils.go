/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

import (
	"errors"
	"reflect"
	"strings"
)

// RedactedValue replaces any non-empty field tagged `sensitive:"true"`.
const RedactedValue = "[redacted]"

var errNotStruct = errors.New("input must be a struct or pointer to struct")

// RedactSensitiveFields walks a config struct and returns it as a map keyed by
// JSON names, with every non-empty `sensitive:"true"` field masked. It is used
// to log the effective configuration at startup.
func RedactSensitiveFields(input interface{}) (map[string]interface{}, error) {
	if input == nil {
		return make(map[string]interface{}), nil
	}

	result := redactRecursively(reflect.ValueOf(input))
	if result == nil {
		return make(map[string]interface{}), nil
	}

	if resultMap, ok := result.(map[string]interface{}); ok {
		return resultMap, nil
	}

	return nil, errNotStruct
}

func redactRecursively(rv reflect.Value) interface{} {
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}

		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		// leaf structs such as time.Time keep their own representation
		if rv.NumField() == 0 || !hasJSONTags(rv.Type()) {
			return rv.Interface()
		}

		result := make(map[string]interface{})
		rt := rv.Type()

		for i := 0; i < rt.NumField(); i++ {
			field := rt.Field(i)
			if !field.IsExported() {
				continue
			}

			name := jsonFieldName(&field)
			if name == "-" {
				continue
			}

			fieldValue := rv.Field(i)

			if field.Tag.Get("sensitive") == "true" {
				if !fieldValue.IsZero() {
					result[name] = RedactedValue
				} else {
					result[name] = ""
				}

				continue
			}

			result[name] = redactRecursively(fieldValue)
		}

		return result

	case reflect.Slice, reflect.Array:
		result := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			result[i] = redactRecursively(rv.Index(i))
		}

		return result

	case reflect.Map:
		result := make(map[string]interface{})

		for _, key := range rv.MapKeys() {
			if key.Kind() == reflect.String {
				result[key.String()] = redactRecursively(rv.MapIndex(key))
			}
		}

		return result

	case reflect.Invalid:
		return nil

	default:
		return rv.Interface()
	}
}

func hasJSONTags(rt reflect.Type) bool {
	for i := 0; i < rt.NumField(); i++ {
		if _, ok := rt.Field(i).Tag.Lookup("json"); ok {
			return true
		}
	}

	return false
}

func jsonFieldName(field *reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name
	}

	if idx := strings.Index(tag, ","); idx != -1 {
		tag = tag[:idx]
	}

	if tag == "" {
		return field.Name
	}

	return tag
}
