// Package sql provides adapter interfaces for database/sql drivers to work with lockstep.
//
// # Interfaces
//
//   - [DB]: Wraps *sql.DB and hands out dedicated connections
//   - [Conn]: Wraps *sql.Conn, one per scenario thread
//
// # Usage
//
//	import (
//	    "database/sql"
//
//	    sqladapter "github.com/arloliu/lockstep/adapter/sql"
//	    _ "github.com/go-sql-driver/mysql"
//	)
//
//	db, _ := sql.Open("mysql", "root:secret@tcp(localhost:3306)/bank")
//	adapter := sqladapter.WrapDB(db)
//
//	conn, err := adapter.Conn(ctx)
//	if err != nil {
//	    return err
//	}
//	defer conn.Close()
//
//	_, err = conn.ExecContext(ctx, "BEGIN")
//
// # Transactions
//
// Transactions are driven by plain SQL (BEGIN, COMMIT, ROLLBACK) executed on
// a Conn rather than through *sql.Tx. Scenarios decide where transactions
// start and end, and an open transaction must survive across synchronized
// steps. database/sql's Tx API cannot express "begin in step 1, commit in
// step 3 after other sessions ran".
package sql
