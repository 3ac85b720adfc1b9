// Package all registers every storage backend with the storage factory.
// Commands blank-import it so the -backend flag can select any of them.
package all

import (
	_ "ingest/internal/storage/mssql"
	_ "ingest/internal/storage/postgres"
	_ "ingest/internal/storage/sqlite"
)
