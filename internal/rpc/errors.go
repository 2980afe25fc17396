package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	gethRpc "github.com/ethereum/go-ethereum/rpc"
)

type ErrorKind int

const (
	KindTransport ErrorKind = iota
	KindConnection
	KindRangeTooLarge
	KindMalformedResponse
	KindCanceled
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport error"
	case KindConnection:
		return "connection error"
	case KindRangeTooLarge:
		return "range too large"
	case KindMalformedResponse:
		return "malformed response"
	case KindCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("unknown error kind %d", int(k))
	}
}

// SourceError is a failed call against the log source.
type SourceError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s failed (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// JSON-RPC error codes used by nodes and providers
const (
	codeParseError    = -32700
	codeLimitExceeded = -32005
)

var rangeTooLargeMessages = []string{
	"exceed maximum block range",
	"block range limit",
	"range too large",
	"range is too large",
	"too many blocks",
	"query returned more than",
	"response size exceeded",
}

var malformedMessages = []string{
	"missing required field",
	"cannot unmarshal",
	"invalid character",
	"unexpected end of json",
}

// KindOf returns the kind carried by err, classifying it if it is not a
// *SourceError.
func KindOf(err error) ErrorKind {
	var sourceErr *SourceError
	if errors.As(err, &sourceErr) {
		return sourceErr.Kind
	}
	return ClassifyError(err)
}

func ClassifyError(err error) ErrorKind {
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransport
	}

	var rpcErr gethRpc.Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.ErrorCode() {
		case codeLimitExceeded:
			return KindRangeTooLarge
		case codeParseError:
			return KindMalformedResponse
		}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return KindMalformedResponse
	}

	msg := strings.ToLower(err.Error())
	for _, m := range rangeTooLargeMessages {
		if strings.Contains(msg, m) {
			return KindRangeTooLarge
		}
	}
	for _, m := range malformedMessages {
		if strings.Contains(msg, m) {
			return KindMalformedResponse
		}
	}
	return KindTransport
}

func wrapError(op string, err error) error {
	return &SourceError{Kind: ClassifyError(err), Op: op, Err: err}
}
