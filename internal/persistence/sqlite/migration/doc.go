// Package migration applies versioned SQL schema changes to a SQLite database.
//
// Migration files are read from an fs.FS (normally an embedded directory) and must
// be named {version}_{description}.sql, for example "001_reference_tables.sql".
// Applied versions are tracked in the schema_migrations table so every file runs
// exactly once, each inside its own transaction.
//
//	manager := migration.NewManager(migration.NewScanner(files), migration.NewExecutor(db), logger)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return err
//	}
package migration
