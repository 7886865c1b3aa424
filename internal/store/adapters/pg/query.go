// query.go: choke point de normalización de errores y envelope.
// Toda ida y vuelta al store pasa por acá: el envelope (id + payload) se
// aplana en un documento con el campo id mezclado, y las condiciones
// "not found" / "clave malformada" se convierten en resultado nil en lugar
// de error. Ninguna operación implementa manejo de errores propio.
package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dropDatabas3/hellolink/internal/metrics"
	"github.com/dropDatabas3/hellolink/internal/observability/logger"
	"github.com/dropDatabas3/hellolink/internal/store/codec"
)

// outcome clasifica el resultado de un round trip.
type outcome string

const (
	outcomeOK           outcome = "ok"
	outcomeNotFound     outcome = "not_found"
	outcomeMalformedKey outcome = "malformed_key"
	outcomeFatal        outcome = "error"
)

// pgInvalidTextRepresentation es el SQLSTATE que PostgreSQL reporta cuando
// una clave de lookup no tiene la forma de una referencia (ej: un id que no
// es UUID válido). El framework trata ese caso igual que "no existe".
const pgInvalidTextRepresentation = "22P02"

// classify mapea un error del driver al outcome normalizado.
func classify(err error) outcome {
	if err == nil {
		return outcomeOK
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return outcomeNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresentation {
		return outcomeMalformedKey
	}
	return outcomeFatal
}

// querier abstrae pool y tx para que las operaciones compuestas pasen por el
// mismo choke point dentro de su transacción.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// queryDoc ejecuta una consulta que retorna el envelope (id, data) de un
// documento. Retorna (nil, nil) para not-found y clave malformada; para el
// resto de los errores retorna el error envuelto con la operación.
func (c *pgConnection) queryDoc(ctx context.Context, q querier, op, sql string, args ...any) (codec.Doc, error) {
	var id string
	var data []byte
	err := q.QueryRow(ctx, sql, args...).Scan(&id, &data)

	switch out := classify(err); out {
	case outcomeOK:
		// sigue abajo
	case outcomeNotFound, outcomeMalformedKey:
		metrics.StoreQuery(op, string(out))
		return nil, nil
	default:
		metrics.StoreQuery(op, string(outcomeFatal))
		c.diag(op, err)
		return nil, fmt.Errorf("pg: %s: %w", op, err)
	}

	doc, err := decodeEnvelope(id, data)
	if err != nil {
		metrics.StoreQuery(op, string(outcomeFatal))
		return nil, fmt.Errorf("pg: %s: decode: %w", op, err)
	}
	metrics.StoreQuery(op, string(outcomeOK))
	return doc, nil
}

// execDoc ejecuta una mutación sin resultado. Las mismas condiciones que en
// queryDoc se tragan (una DELETE sobre una clave malformada es "no había
// nada que borrar"); el resto propaga.
func (c *pgConnection) execDoc(ctx context.Context, q querier, op, sql string, args ...any) error {
	_, err := q.Exec(ctx, sql, args...)

	switch out := classify(err); out {
	case outcomeOK, outcomeNotFound, outcomeMalformedKey:
		metrics.StoreQuery(op, string(out))
		return nil
	default:
		metrics.StoreQuery(op, string(outcomeFatal))
		c.diag(op, err)
		return fmt.Errorf("pg: %s: %w", op, err)
	}
}

// decodeEnvelope aplana el envelope del store en un documento plano:
// payload decodificado por el codec + campo id mezclado al mismo nivel.
func decodeEnvelope(id string, data []byte) (codec.Doc, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	doc := codec.Decode(raw)
	doc["id"] = id
	return doc, nil
}

// encodeDoc serializa un documento para la columna data.
func encodeDoc(doc codec.Doc) ([]byte, error) {
	return json.Marshal(codec.Encode(doc))
}

// diag loguea errores inesperados, solo fuera de prod. Nunca altera el
// control flow.
func (c *pgConnection) diag(op string, err error) {
	if !c.debug {
		return
	}
	logger.Named("store.pg").Debug("unexpected store error",
		logger.Op(op),
		logger.Err(err),
	)
}
