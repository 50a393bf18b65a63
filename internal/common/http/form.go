package http

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
)

var errFormTarget = errors.New("form target must be a pointer to a struct")

// DecodeForm parses the request form and copies values into the string
// fields of dst by their `form` tag. Missing keys leave fields empty.
func DecodeForm(r *http.Request, dst any) error {
	if err := r.ParseForm(); err != nil {
		return err
	}

	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return errFormTarget
	}
	v = v.Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" || field.Type.Kind() != reflect.String {
			continue
		}
		v.Field(i).SetString(r.PostForm.Get(name))
	}
	return nil
}
