// Package credentials persists sealed credential rows in the local SQLite
// database.
//
// Rows are keyed by the blind lookup key of an identity (see
// cryptox.LookupKey) and carry only a nonce and AES-GCM ciphertext; the
// repository never sees an identity, hash or salt in clear. Sealing and
// opening is the job of internal/client/store.
//
// The SQLiteRepository works over dbx.DBTX, so the same code runs on a
// *sql.DB or inside a transaction:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//		return credentials.NewSQLiteRepository(tx).Insert(ctx, row)
//	})
package credentials
