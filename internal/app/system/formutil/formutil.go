// Package formutil decodes request bodies into input structs.
//
// Clients send either JSON or form-encoded bodies. Both are decoded using the
// struct's `json` tag names, so one struct serves both:
//
//	type input struct {
//		FullName string  `json:"fullName"`
//		Password *string `json:"password"`
//	}
//
// For form bodies, a *string field stays nil when the key is absent.
package formutil

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/dalemusser/readinglog/internal/app/system/apperr"
	"github.com/dalemusser/readinglog/internal/app/system/limits"
)

// MaxBodyBytes bounds a decoded request body.
const MaxBodyBytes = limits.MaxRequestBody

// Decode fills dst, a pointer to a struct, from r's body.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	if IsJSON(r) {
		dec := json.NewDecoder(r.Body)
		if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			return apperr.Invalid("Request body is not valid JSON.")
		}
		return nil
	}

	if err := r.ParseForm(); err != nil {
		return apperr.Invalid("Invalid form data.")
	}
	fillFromForm(r, dst)
	return nil
}

// IsJSON reports whether the request body is declared as JSON.
func IsJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

func fillFromForm(r *http.Request, dst any) {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return
	}
	v = v.Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := strings.Split(f.Tag.Get("json"), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		vals, ok := r.PostForm[name]
		if !ok || len(vals) == 0 {
			continue
		}
		field := v.Field(i)
		switch {
		case field.Kind() == reflect.String:
			field.SetString(vals[0])
		case field.Kind() == reflect.Pointer && field.Type().Elem().Kind() == reflect.String:
			s := vals[0]
			field.Set(reflect.ValueOf(&s))
		}
	}
}
