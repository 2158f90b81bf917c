// Package aggregates contains the transactional implementations of the
// domain aggregate contracts.
//
// Each write locks the rows it decides on, checks actor capability and
// current state, mutates, appends its audit row and commits as one
// transaction. Table-level repos from internal/data/repos do the SQL.
package aggregates
