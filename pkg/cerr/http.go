package cerr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kmorozov/taskdeck/pkg/clog"
)

type httpError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON encodes response as JSON with a 200 status.
func WriteJSON(ctx context.Context, rw http.ResponseWriter, response any) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(response); err != nil {
		WriteJSONError(ctx, rw, NewError(Internal, "server error", err))
		return
	}
	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	if _, err := rw.Write(buf.Bytes()); err != nil {
		clog.AddError(ctx, NewError(Internal, "server error", err))
	}
}

// WriteJSONError maps err to its HTTP status and writes a {code,message} body.
// Non-cerr errors are reported as unknown.
func WriteJSONError(ctx context.Context, rw http.ResponseWriter, err error) {
	clog.AddError(ctx, err)

	var cErr *Error
	if !errors.As(err, &cErr) {
		cErr = NewError(Unknown, "unknown error", err)
	}
	if cErr.Stack != "" {
		clog.AddStack(ctx, cErr.Stack)
	}

	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.WriteHeader(cErr.Code.HTTPCode())
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(true)
	if encErr := enc.Encode(httpError{Code: cErr.Code.String(), Message: cErr.Msg}); encErr != nil {
		buf = bytes.NewBufferString(`{"code":"internal","message":"server error"}`)
		cErr.Err = errors.Join(cErr.Err, encErr)
		clog.AddError(ctx, cErr)
	}
	if _, wErr := rw.Write(buf.Bytes()); wErr != nil {
		cErr.Err = errors.Join(cErr.Err, wErr)
		clog.AddError(ctx, cErr)
	}
}
