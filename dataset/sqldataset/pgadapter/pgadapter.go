/*
Package pgadapter opens PostgreSQL databases for reading sample tables
with the sqldataset package.
*/
package pgadapter

import (
	"database/sql"
	"fmt"

	// Import of postgresql driver
	_ "github.com/lib/pq"
)

/*
Open takes a PostgreSQL connection URL and returns an open database
handle on it, or an error if the URL cannot be opened as a postgres
database.
*/
func Open(url string, maxConns int) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("opening postgresql database: %v", err)
	}
	db.SetMaxOpenConns(maxConns)
	return db, nil
}
