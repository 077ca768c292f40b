package adapters

import (
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/doug-martin/goqu/v9/exp"
)

const (
	colKey       = "key"
	colValue     = "value"
	colExpiresAt = "expires_at"

	dialectPostgres = "postgres"

	fnNow         = "now()"
	castBytea     = "decode(?, 'hex')"
	expiryFromNow = "now() + (? * interval '1 millisecond')"

	aliasCount = "cnt"
)

var ErrBuildingQueryFailed = errors.New("failed to build sql query")

// likeEscaper neutralizes SQL wildcard characters before glob translation.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// globTranslator maps glob wildcards onto their SQL LIKE counterparts.
var globTranslator = strings.NewReplacer(`*`, `%`, `?`, `_`)

// notExpired is the predicate selecting only live entries.
func notExpired() exp.ExpressionList {
	return goqu.Or(
		goqu.C(colExpiresAt).IsNull(),
		goqu.C(colExpiresAt).Gt(goqu.L(fnNow)),
	)
}

// expiryExpression renders the expires_at value for a ttl; a zero or
// negative ttl stores NULL (no expiry).
func expiryExpression(ttl time.Duration) any {
	if ttl <= 0 {
		return nil
	}

	return goqu.L(expiryFromNow, ttl.Milliseconds())
}

// buildGetQuery selects the live payload for one key.
func buildGetQuery(table, key string) (string, error) {
	sqlQuery, _, err := goqu.Dialect(dialectPostgres).
		From(table).
		Select(colValue).
		Where(goqu.C(colKey).Eq(key), notExpired()).
		ToSQL()
	if err != nil {
		return "", errors.Join(ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

// buildSetQuery upserts one key with its payload and optional expiry.
func buildSetQuery(table, key string, payload []byte, ttl time.Duration) (string, error) {
	valueExpr := goqu.L(castBytea, hex.EncodeToString(payload))
	expiresExpr := expiryExpression(ttl)

	sqlQuery, _, err := goqu.Dialect(dialectPostgres).
		Insert(table).
		Cols(colKey, colValue, colExpiresAt).
		Vals(goqu.Vals{key, valueExpr, expiresExpr}).
		OnConflict(goqu.DoUpdate(colKey, goqu.Record{
			colValue:     valueExpr,
			colExpiresAt: expiresExpr,
		})).
		ToSQL()
	if err != nil {
		return "", errors.Join(ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

// buildDelQuery deletes the given keys.
func buildDelQuery(table string, keys []string) (string, error) {
	sqlQuery, _, err := goqu.Dialect(dialectPostgres).
		Delete(table).
		Where(goqu.C(colKey).In(keys)).
		ToSQL()
	if err != nil {
		return "", errors.Join(ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

// buildExistsQuery counts live entries for one key.
func buildExistsQuery(table, key string) (string, error) {
	sqlQuery, _, err := goqu.Dialect(dialectPostgres).
		From(table).
		Select(goqu.COUNT(goqu.Star()).As(aliasCount)).
		Where(goqu.C(colKey).Eq(key), notExpired()).
		ToSQL()
	if err != nil {
		return "", errors.Join(ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

// buildExpireQuery sets a new expiry on a live key.
func buildExpireQuery(table, key string, ttl time.Duration) (string, error) {
	sqlQuery, _, err := goqu.Dialect(dialectPostgres).
		Update(table).
		Set(goqu.Record{colExpiresAt: expiryExpression(ttl)}).
		Where(goqu.C(colKey).Eq(key), notExpired()).
		ToSQL()
	if err != nil {
		return "", errors.Join(ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

// buildTTLQuery selects the expiry and the database clock for one live key.
func buildTTLQuery(table, key string) (string, error) {
	sqlQuery, _, err := goqu.Dialect(dialectPostgres).
		From(table).
		Select(colExpiresAt, goqu.L(fnNow)).
		Where(goqu.C(colKey).Eq(key), notExpired()).
		ToSQL()
	if err != nil {
		return "", errors.Join(ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

// buildKeysQuery selects live keys matching a glob pattern.
func buildKeysQuery(table, pattern string) (string, error) {
	like := globTranslator.Replace(likeEscaper.Replace(pattern))

	sqlQuery, _, err := goqu.Dialect(dialectPostgres).
		From(table).
		Select(colKey).
		Where(goqu.C(colKey).Like(like), notExpired()).
		Order(goqu.I(colKey).Asc()).
		ToSQL()
	if err != nil {
		return "", errors.Join(ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}
