// Package scenario loads lock-step transaction scenarios from YAML.
//
// A scenario file has a single top-level "scenario" key:
//
//	scenario:
//	  name: lost-update
//	  datasource: bank
//	  defaultIsolationLevel: READ_COMMITTED
//	  threads:
//	    alice:
//	      steps:
//	        - sql: BEGIN
//	        - sqls:
//	            - SELECT balance FROM accounts WHERE id = 1
//	            - UPDATE accounts SET balance = 90 WHERE id = 1
//	        - sql: COMMIT
//	    bob:
//	      steps:
//	        - id: bob-begin
//	          isolationLevel: SERIALIZABLE
//	          sql: BEGIN
//	        - sql: UPDATE accounts SET balance = 80 WHERE id = 1
//	        - sql: COMMIT
//
// Threads keep the order in which they are declared in the file, which is
// the order results are reported in. A step holds either a single "sql"
// statement or a "sqls" list; when both are present "sqls" wins.
package scenario
