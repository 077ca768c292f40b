package adapters

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/AntonStoeckl/keyvalue-driver-go/kvdriver"
)

const (
	ttlMissingKey = -2
	ttlNoExpiry   = -1

	pingQuery = "SELECT 1"
)

// KeyValueDispatcher implements kvdriver.Dispatcher on top of a DBAdapter,
// translating driver commands into SQL against a key-value table.
type KeyValueDispatcher struct {
	db    DBAdapter
	table string
}

// NewKeyValueDispatcher creates a dispatcher for the given adapter and
// key-value table name.
func NewKeyValueDispatcher(db DBAdapter, table string) *KeyValueDispatcher {
	return &KeyValueDispatcher{db: db, table: table}
}

// Dispatch executes one command and translates the database result into a
// wire-level Reply. It records the destination host on the command before
// executing it.
func (d *KeyValueDispatcher) Dispatch(ctx context.Context, cmd *kvdriver.Command) (kvdriver.Reply, error) {
	cmd.SetHost(d.db.Host())

	switch cmd.Name() {
	case kvdriver.CmdGet:
		return d.get(ctx, cmd)
	case kvdriver.CmdSet:
		return d.set(ctx, cmd)
	case kvdriver.CmdDel:
		return d.del(ctx, cmd)
	case kvdriver.CmdExists:
		return d.exists(ctx, cmd)
	case kvdriver.CmdExpire:
		return d.expire(ctx, cmd)
	case kvdriver.CmdTTL:
		return d.ttl(ctx, cmd)
	case kvdriver.CmdKeys:
		return d.keys(ctx, cmd)
	case kvdriver.CmdPing:
		return d.ping(ctx)
	default:
		return kvdriver.Reply{}, fmt.Errorf("%w: %s", kvdriver.ErrUnsupportedCommand, cmd.Name())
	}
}

// Close releases the underlying database adapter.
func (d *KeyValueDispatcher) Close() error {
	return d.db.Close()
}

func (d *KeyValueDispatcher) get(ctx context.Context, cmd *kvdriver.Command) (kvdriver.Reply, error) {
	sqlQuery, err := buildGetQuery(d.table, cmd.Key())
	if err != nil {
		return kvdriver.Reply{}, err
	}

	rows, err := d.db.Query(ctx, sqlQuery)
	if err != nil {
		return kvdriver.Reply{}, err
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return kvdriver.Reply{Kind: kvdriver.ReplyNil}, nil
	}

	var payload []byte
	if err := rows.Scan(&payload); err != nil {
		return kvdriver.Reply{}, err
	}

	return kvdriver.Reply{Kind: kvdriver.ReplyPayload, Payload: payload}, nil
}

func (d *KeyValueDispatcher) set(ctx context.Context, cmd *kvdriver.Command) (kvdriver.Reply, error) {
	args := cmd.Args()
	if len(args) == 0 {
		return kvdriver.Reply{}, fmt.Errorf("%w: SET requires a payload argument", kvdriver.ErrUnsupportedCommand)
	}

	var ttl time.Duration
	if len(args) > 1 {
		ms, parseErr := strconv.ParseInt(string(args[1]), 10, 64)
		if parseErr != nil {
			return kvdriver.Reply{}, parseErr
		}

		ttl = time.Duration(ms) * time.Millisecond
	}

	sqlQuery, err := buildSetQuery(d.table, cmd.Key(), args[0], ttl)
	if err != nil {
		return kvdriver.Reply{}, err
	}

	return d.execForRowsAffected(ctx, sqlQuery)
}

func (d *KeyValueDispatcher) del(ctx context.Context, cmd *kvdriver.Command) (kvdriver.Reply, error) {
	sqlQuery, err := buildDelQuery(d.table, cmd.Keys())
	if err != nil {
		return kvdriver.Reply{}, err
	}

	return d.execForRowsAffected(ctx, sqlQuery)
}

func (d *KeyValueDispatcher) exists(ctx context.Context, cmd *kvdriver.Command) (kvdriver.Reply, error) {
	sqlQuery, err := buildExistsQuery(d.table, cmd.Key())
	if err != nil {
		return kvdriver.Reply{}, err
	}

	rows, err := d.db.Query(ctx, sqlQuery)
	if err != nil {
		return kvdriver.Reply{}, err
	}
	defer func() { _ = rows.Close() }()

	var count int64
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return kvdriver.Reply{}, err
		}
	}

	return kvdriver.Reply{Kind: kvdriver.ReplyInteger, Integer: count}, nil
}

func (d *KeyValueDispatcher) expire(ctx context.Context, cmd *kvdriver.Command) (kvdriver.Reply, error) {
	args := cmd.Args()
	if len(args) == 0 {
		return kvdriver.Reply{}, fmt.Errorf("%w: EXPIRE requires a ttl argument", kvdriver.ErrUnsupportedCommand)
	}

	ms, parseErr := strconv.ParseInt(string(args[0]), 10, 64)
	if parseErr != nil {
		return kvdriver.Reply{}, parseErr
	}

	sqlQuery, err := buildExpireQuery(d.table, cmd.Key(), time.Duration(ms)*time.Millisecond)
	if err != nil {
		return kvdriver.Reply{}, err
	}

	return d.execForRowsAffected(ctx, sqlQuery)
}

func (d *KeyValueDispatcher) ttl(ctx context.Context, cmd *kvdriver.Command) (kvdriver.Reply, error) {
	sqlQuery, err := buildTTLQuery(d.table, cmd.Key())
	if err != nil {
		return kvdriver.Reply{}, err
	}

	rows, err := d.db.Query(ctx, sqlQuery)
	if err != nil {
		return kvdriver.Reply{}, err
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return kvdriver.Reply{Kind: kvdriver.ReplyInteger, Integer: ttlMissingKey}, nil
	}

	var expiresAt sql.NullTime
	var dbNow time.Time
	if err := rows.Scan(&expiresAt, &dbNow); err != nil {
		return kvdriver.Reply{}, err
	}

	if !expiresAt.Valid {
		return kvdriver.Reply{Kind: kvdriver.ReplyInteger, Integer: ttlNoExpiry}, nil
	}

	remaining := expiresAt.Time.Sub(dbNow).Milliseconds()
	if remaining < 0 {
		remaining = 0
	}

	return kvdriver.Reply{Kind: kvdriver.ReplyInteger, Integer: remaining}, nil
}

func (d *KeyValueDispatcher) keys(ctx context.Context, cmd *kvdriver.Command) (kvdriver.Reply, error) {
	args := cmd.Args()
	if len(args) == 0 {
		return kvdriver.Reply{}, fmt.Errorf("%w: KEYS requires a pattern argument", kvdriver.ErrUnsupportedCommand)
	}

	sqlQuery, err := buildKeysQuery(d.table, string(args[0]))
	if err != nil {
		return kvdriver.Reply{}, err
	}

	rows, err := d.db.Query(ctx, sqlQuery)
	if err != nil {
		return kvdriver.Reply{}, err
	}
	defer func() { _ = rows.Close() }()

	elements := make([][]byte, 0)

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return kvdriver.Reply{}, err
		}

		elements = append(elements, []byte(key))
	}

	return kvdriver.Reply{Kind: kvdriver.ReplyArray, Elements: elements}, nil
}

func (d *KeyValueDispatcher) ping(ctx context.Context) (kvdriver.Reply, error) {
	rows, err := d.db.Query(ctx, pingQuery)
	if err != nil {
		return kvdriver.Reply{}, err
	}
	defer func() { _ = rows.Close() }()

	var alive int64
	if rows.Next() {
		if err := rows.Scan(&alive); err != nil {
			return kvdriver.Reply{}, err
		}
	}

	return kvdriver.Reply{Kind: kvdriver.ReplyInteger, Integer: alive}, nil
}

// execForRowsAffected runs a mutation and replies with its affected-row
// count.
func (d *KeyValueDispatcher) execForRowsAffected(ctx context.Context, sqlQuery string) (kvdriver.Reply, error) {
	result, err := d.db.Exec(ctx, sqlQuery)
	if err != nil {
		return kvdriver.Reply{}, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return kvdriver.Reply{}, err
	}

	return kvdriver.Reply{Kind: kvdriver.ReplyInteger, Integer: affected}, nil
}
