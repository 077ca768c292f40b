package kvdriver

import (
	"errors"
)

var ErrNilDatabaseConnection = errors.New("nil database connection supplied")
var ErrNilDispatcher = errors.New("nil dispatcher supplied")
var ErrEmptyKeyTableName = errors.New("empty keyTableName supplied")
var ErrNilCodec = errors.New("nil codec supplied")
var ErrNilTextEncoding = errors.New("nil text encoding supplied")
var ErrNilTargetType = errors.New("nil target type supplied")
var ErrNoConversion = errors.New("no conversion available for target type")
var ErrClientClosed = errors.New("client is closed")
var ErrClientReadOnly = errors.New("write command is invalid for a client in read-only mode")
var ErrCommandFailed = errors.New("command dispatch failed")
var ErrUnsupportedCommand = errors.New("unsupported command")
var ErrUnexpectedReply = errors.New("unexpected reply kind for command")
