package sqlxrepos

import (
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/repostnet/core"
)

// database/sql does not export the error returned once a *sql.DB is closed.
const dbClosedMsg = "sql: database is closed"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// prefixPattern returns a LIKE pattern matching strings starting with s.
func prefixPattern(s string) string {
	return likeEscaper.Replace(s) + "%"
}

// trapNoRowsErr maps psql "no rows" err to notFound
func trapNoRowsErr(err error, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return wrapDBErr(err, msg)
}

// wrapDBErr annotates err with msg. A closed pool or connection can't recover,
// so it is reported as a core shutdown error instead.
func wrapDBErr(err error, msg string) error {
	if errors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), dbClosedMsg) {
		return core.NewShutdownError(msg + ": " + err.Error())
	}
	return errors.Wrap(err, msg)
}
