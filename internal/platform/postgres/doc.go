// Package postgres provides PostgreSQL implementations of the storage
// interfaces defined in the internal/store package, together with the
// embedded schema migrations and the mapping from driver errors to
// store errors.
package postgres
