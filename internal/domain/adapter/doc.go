// Package adapter define el contrato de almacenamiento que el framework de
// autenticación consume: cuatro tipos de entidad (User, Account, Session,
// VerificationToken) y un conjunto fijo de operaciones sobre ellos.
//
// Convención de resultados: los lookups retornan (nil, nil) cuando el
// registro no existe O cuando la clave de búsqueda está malformada; el
// framework no distingue ambos casos. Los errores solo se propagan para
// fallos reales (transporte, validación, etc.). La normalización ocurre una
// única vez dentro de cada adapter concreto, nunca en los callers.
//
// Este paquete no depende de ningún driver: los adapters concretos viven en
// internal/store/adapters y se registran en internal/store.
package adapter
