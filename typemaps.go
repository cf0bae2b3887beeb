package dbus

import (
	"os"
	"reflect"

	"github.com/creachadair/mds/mapset"
)

// basicType records the correspondence between one DBus basic type
// signature character and the Go kind/type used to represent it.
type basicType struct {
	sig  byte
	kind reflect.Kind
	typ  reflect.Type
}

// basicTypes enumerates every DBus basic type that also corresponds
// 1:1 to a distinct Go kind. Variant, signature, object path and unix
// fd are handled separately below since they don't map from a bare
// reflect.Kind (several Go kinds, or none at all, can represent
// them).
var basicTypes = []basicType{
	{'b', reflect.Bool, reflect.TypeFor[bool]()},
	{'y', reflect.Uint8, reflect.TypeFor[uint8]()},
	{'n', reflect.Int16, reflect.TypeFor[int16]()},
	{'q', reflect.Uint16, reflect.TypeFor[uint16]()},
	{'i', reflect.Int32, reflect.TypeFor[int32]()},
	{'u', reflect.Uint32, reflect.TypeFor[uint32]()},
	{'x', reflect.Int64, reflect.TypeFor[int64]()},
	{'t', reflect.Uint64, reflect.TypeFor[uint64]()},
	{'d', reflect.Float64, reflect.TypeFor[float64]()},
	{'s', reflect.String, reflect.TypeFor[string]()},
}

// extraTypes are DBus types represented by a named Go type rather
// than a bare kind, so they're keyed by reflect.Type instead of
// reflect.Kind.
var extraTypes = []struct {
	sig byte
	typ reflect.Type
}{
	{'v', reflect.TypeFor[any]()},
	{'g', reflect.TypeFor[Signature]()},
	{'o', reflect.TypeFor[ObjectPath]()},
	{'h', reflect.TypeFor[*os.File]()},
}

// strToType maps the DBus type signature identifier of a type to its
// reflect.Type.
//
// typeToStr maps basic DBus types that aren't basic Go types to their
// DBus type signature identifier.
//
// kindToStr maps reflect.Kinds to their corresponding DBus type
// signature identifier, if any.
//
// kindToType maps reflect.Kinds of DBus basic types to their
// corresponding reflect.Type.
//
// mapKeyKinds is the set of reflect.Kinds that can be DBus map keys.
//
// All five are built once from basicTypes and extraTypes, rather than
// maintained as independent literals, so the type tables can't drift
// out of sync with each other.
var strToType, typeToStr, kindToStr, kindToType, mapKeyKinds = buildTypeTables()

func buildTypeTables() (map[byte]reflect.Type, map[reflect.Type]byte, map[reflect.Kind]byte, map[reflect.Kind]reflect.Type, mapset.Set[reflect.Kind]) {
	strToType := make(map[byte]reflect.Type, len(basicTypes)+len(extraTypes))
	typeToStr := make(map[reflect.Type]byte, len(extraTypes))
	kindToStr := make(map[reflect.Kind]byte, len(basicTypes))
	kindToType := make(map[reflect.Kind]reflect.Type, len(basicTypes))

	kinds := make([]reflect.Kind, 0, len(basicTypes))
	for _, bt := range basicTypes {
		strToType[bt.sig] = bt.typ
		kindToStr[bt.kind] = bt.sig
		kindToType[bt.kind] = bt.typ
		kinds = append(kinds, bt.kind)
	}

	for _, et := range extraTypes {
		strToType[et.sig] = et.typ
		typeToStr[et.typ] = et.sig
	}

	return strToType, typeToStr, kindToStr, kindToType, mapset.New(kinds...)
}
