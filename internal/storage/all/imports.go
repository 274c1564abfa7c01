// Package all registers every built-in results store backend with the
// storage factory. Import it for side effects from the wiring layer:
//
//	import _ "itemimport/internal/storage/all"
//
// Kinds made available: "sqlite", "postgres", "mssql".
package all

import (
	_ "itemimport/internal/storage/mssql"
	_ "itemimport/internal/storage/postgres"
	_ "itemimport/internal/storage/sqlite"
)
