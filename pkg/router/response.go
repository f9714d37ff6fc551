package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/teampulse/backend/pkg/errorx"
	"github.com/teampulse/backend/pkg/xcontext"
)

type response struct {
	Code  errorx.Code `json:"code"`
	Error string      `json:"error,omitempty"`
	Data  any         `json:"data,omitempty"`
}

func handleResponse[Response any](
	ctx context.Context, w http.ResponseWriter, resp *Response, err error,
) {
	body := response{}
	if err != nil {
		var xerr errorx.Error
		if !errors.As(err, &xerr) {
			xerr = errorx.Unknown
		}

		body.Code = xerr.Code
		body.Error = xerr.Message
	} else {
		body.Data = resp
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot encode response: %v", err)
	}
}
