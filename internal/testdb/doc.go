// Package testdb provides utilities for tests that need a real PostgreSQL
// database. Tests using it are expected to carry the integration build tag
// and are skipped when no database URL is configured.
//
// Typical use:
//
//	db := testdb.GetTestDBWithT(t)
//	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//		owner := testdb.CreateTestUser(t, tx)
//		// exercise stores built with tx
//	})
//
// Every transaction is rolled back when fn returns, so tests never see each
// other's rows.
package testdb
