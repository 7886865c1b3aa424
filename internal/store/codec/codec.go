// Package codec convierte documentos planos entre la representación del
// framework (valores Go, time.Time incluido) y la representación nativa del
// store (JSON, que no tiene tipo temporal).
//
// Los timestamps se envuelven como {"$time": "<RFC3339Nano>"} al entrar al
// store y se desenvuelven al salir. La transformación es total (nunca
// descarta un campo) y de un solo nivel: no recorre estructuras anidadas,
// porque las cuatro entidades del contrato son planas.
package codec

import "time"

// Doc es un documento plano: los campos de una entidad, un nivel.
type Doc map[string]any

// timeKey es la clave del wrapper temporal en la representación del store.
const timeKey = "$time"

// Encode retorna una copia del documento con todo valor time.Time convertido
// a la representación temporal del store. El resto pasa sin cambios.
func Encode(doc Doc) Doc {
	out := make(Doc, len(doc))
	for k, v := range doc {
		switch t := v.(type) {
		case time.Time:
			out[k] = Doc{timeKey: t.UTC().Format(time.RFC3339Nano)}
		case *time.Time:
			if t == nil {
				out[k] = nil
			} else {
				out[k] = Doc{timeKey: t.UTC().Format(time.RFC3339Nano)}
			}
		default:
			out[k] = v
		}
	}
	return out
}

// Decode es la inversa de Encode: todo valor con la forma del wrapper
// temporal vuelve a ser time.Time. El resto pasa sin cambios.
func Decode(doc Doc) Doc {
	out := make(Doc, len(doc))
	for k, v := range doc {
		if t, ok := asStoreTime(v); ok {
			out[k] = t
		} else {
			out[k] = v
		}
	}
	return out
}

// asStoreTime detecta la representación temporal del store.
// Acepta tanto Doc como map[string]any porque encoding/json decodifica a
// esta última.
func asStoreTime(v any) (time.Time, bool) {
	var m map[string]any
	switch mv := v.(type) {
	case Doc:
		m = mv
	case map[string]any:
		m = mv
	default:
		return time.Time{}, false
	}
	if len(m) != 1 {
		return time.Time{}, false
	}
	s, ok := m[timeKey].(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
