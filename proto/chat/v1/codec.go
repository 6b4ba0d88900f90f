// Package chatv1 describes the chat.v1.ChatService gRPC API.
//
// Requests, responses and stream events are plain Go structs that travel
// on the wire as google.protobuf.Struct documents, so the service needs no
// generated code: Encode and Decode convert between the two forms.
package chatv1

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Encode converts a JSON-taggable value into a Struct document.
func Encode(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encode document")
	}
	doc := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, doc); err != nil {
		return nil, errors.Wrap(err, "encode document")
	}
	return doc, nil
}

// Decode fills out (a pointer) from a Struct document. Keys follow the
// json tags of out; timestamps are RFC 3339 strings.
func Decode(doc *structpb.Struct, out any) error {
	if doc == nil {
		return nil
	}
	return DecodeMap(doc.AsMap(), out)
}

// DecodeMap fills out from a loosely typed key/value document, the shape
// document data takes after crossing the wire.
func DecodeMap(m map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
			numberToTimeHook,
		),
	})
	if err != nil {
		return errors.Wrap(err, "decode document")
	}
	return errors.Wrap(dec.Decode(m), "decode document")
}

// numberToTimeHook accepts Unix milliseconds for time fields.
func numberToTimeHook(f reflect.Type, t reflect.Type, data any) (any, error) {
	if t != reflect.TypeOf(time.Time{}) {
		return data, nil
	}
	switch v := data.(type) {
	case float64:
		return time.UnixMilli(int64(v)).UTC(), nil
	case int64:
		return time.UnixMilli(v).UTC(), nil
	}
	return data, nil
}
