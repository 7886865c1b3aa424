package codec

import "time"

// Accessors tipados para mapear documentos decodificados a structs.
// Toleran campos ausentes o de tipo inesperado retornando el zero value:
// un documento guardado por una versión anterior no debe romper el scan.

// String retorna el valor string del campo, o "" si falta.
func (d Doc) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// Time retorna el valor time.Time del campo, o zero si falta.
func (d Doc) Time(key string) time.Time {
	t, _ := d[key].(time.Time)
	return t
}

// TimePtr retorna un puntero al valor time.Time del campo, o nil si falta.
func (d Doc) TimePtr(key string) *time.Time {
	if t, ok := d[key].(time.Time); ok {
		return &t
	}
	return nil
}
