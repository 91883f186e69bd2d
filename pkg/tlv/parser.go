// Package tlv holds the byte plumbing shared by the reader and tag layers: slice helpers,
// hex formatting, and BER-TLV mapping into Go structures driven by struct tags.
//
// The BER-TLV side is used for the historical bytes of contactless ATRs built by PC/SC
// readers, where the card identity is carried in an application identifier TLV (tag '4F').
package tlv

import (
	"encoding/hex"
	"fmt"
	"reflect"
	"strings"

	"github.com/moov-io/bertlv"
)

// Unmarshaler allows custom types to implement their own TLV parsing logic.
type Unmarshaler interface {
	UnmarshalTLV(data []byte) error
}

// Unmarshal parses raw BER-TLV data and maps it into a target Go struct.
//
// Fields are bound with a `tlv:"4F"` tag. A field named Unknown (or tagged `tlv:",unknown"`)
// of type []bertlv.TLV collects every TLV that no other field consumed.
func Unmarshal(data []byte, target interface{}) error {
	packets, err := bertlv.Decode(data)
	if err != nil {
		return fmt.Errorf("bertlv decode failed: %w", err)
	}
	return UnmarshalFromPackets(packets, target)
}

// UnmarshalFromPackets maps pre-decoded packets to a target struct.
// Repeated tags are appended when the target field is a slice of structs.
func UnmarshalFromPackets(packets []bertlv.TLV, target interface{}) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("target must be a non-nil pointer")
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("target must point to a struct, got %s", v.Kind())
	}
	t := v.Type()

	consumed := make(map[int]bool)

	for i := 0; i < v.NumField(); i++ {
		fieldType := t.Field(i)
		tag, ok := fieldTag(fieldType)
		if !ok {
			continue
		}

		for idx, packet := range packets {
			if strings.EqualFold(packet.Tag, tag) {
				if err := mapPacketToField(packet, v.Field(i)); err != nil {
					return fmt.Errorf("field %s (tag %s): %w", fieldType.Name, tag, err)
				}
				consumed[idx] = true
			}
		}
	}

	collectUnknown(v, t, packets, consumed)
	return nil
}

// fieldTag returns the upper-cased tag bound to a struct field.
func fieldTag(f reflect.StructField) (string, bool) {
	cfg := f.Tag.Get("tlv")
	if cfg == "" || cfg == ",unknown" || f.Name == "Unknown" {
		return "", false
	}
	return strings.ToUpper(strings.Split(cfg, ",")[0]), true
}

func mapPacketToField(packet bertlv.TLV, field reflect.Value) error {
	if field.Kind() == reflect.Slice && !isByteSlice(field) {
		elem := reflect.New(field.Type().Elem()).Elem()
		if err := decodeToValue(packet, elem); err != nil {
			return err
		}
		field.Set(reflect.Append(field, elem))
		return nil
	}

	return decodeToValue(packet, field)
}

func decodeToValue(packet bertlv.TLV, field reflect.Value) error {
	if field.CanAddr() {
		if u, ok := field.Addr().Interface().(Unmarshaler); ok {
			return u.UnmarshalTLV(rawValue(packet))
		}
	}

	switch {
	case isByteSlice(field):
		field.SetBytes(rawValue(packet))
	case field.Kind() == reflect.String:
		field.SetString(hex.EncodeToString(packet.Value))
	case field.Kind() == reflect.Struct:
		if len(packet.TLVs) > 0 {
			return UnmarshalFromPackets(packet.TLVs, field.Addr().Interface())
		}
		return Unmarshal(packet.Value, field.Addr().Interface())
	case field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct:
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		if len(packet.TLVs) > 0 {
			return UnmarshalFromPackets(packet.TLVs, field.Interface())
		}
		return Unmarshal(packet.Value, field.Interface())
	}

	return nil
}

func collectUnknown(v reflect.Value, t reflect.Type, packets []bertlv.TLV, consumed map[int]bool) {
	var unknown reflect.Value
	for i := 0; i < v.NumField(); i++ {
		if t.Field(i).Tag.Get("tlv") == ",unknown" || t.Field(i).Name == "Unknown" {
			unknown = v.Field(i)
			break
		}
	}
	if !unknown.IsValid() || !unknown.CanSet() {
		return
	}

	var leftovers []bertlv.TLV
	for idx, packet := range packets {
		if !consumed[idx] {
			leftovers = append(leftovers, packet)
		}
	}
	if len(leftovers) > 0 {
		unknown.Set(reflect.ValueOf(leftovers))
	}
}

func rawValue(p bertlv.TLV) []byte {
	if len(p.TLVs) > 0 {
		if enc, err := bertlv.Encode(p.TLVs); err == nil {
			return enc
		}
	}
	return p.Value
}

func isByteSlice(v reflect.Value) bool {
	return v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8
}
