package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"strconv"

	"github.com/rs/cors"
	"github.com/teampulse/backend/pkg/xcontext"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

type Router struct {
	mux     *http.ServeMux
	ctx     context.Context
	befores []MiddlewareFunc
}

// New creates a router whose handlers run with the given base context. The
// base context carries the database, logger, and configs.
func New(ctx context.Context) *Router {
	return &Router{mux: http.NewServeMux(), ctx: ctx}
}

func (r *Router) Use(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

// Branch returns a router sharing the same mux but with an independent
// middleware chain.
func (r *Router) Branch() *Router {
	befores := make([]MiddlewareFunc, len(r.befores))
	copy(befores, r.befores)
	return &Router{mux: r.mux, ctx: r.ctx, befores: befores}
}

func (r *Router) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   xcontext.Configs(r.ctx).ApiServer.AllowCORS,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	return c.Handler(r.mux)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	register(r, http.MethodGet, pattern, handler)
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	register(r, http.MethodPost, pattern, handler)
}

func register[Request, Response any](
	r *Router, method, pattern string, handler HandlerFunc[Request, Response],
) {
	befores := make([]MiddlewareFunc, len(r.befores))
	copy(befores, r.befores)

	r.mux.HandleFunc(pattern, func(w http.ResponseWriter, req *http.Request) {
		if req.Method != method {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		ctx := xcontext.WithHTTPRequest(r.ctx, req)

		var err error
		for _, before := range befores {
			ctx, err = before(ctx)
			if err != nil {
				handleResponse[Response](ctx, w, nil, err)
				return
			}
		}

		request := new(Request)
		if err := parseRequest(req, method, request); err != nil {
			handleResponse[Response](ctx, w, nil, err)
			return
		}

		resp, err := handler(ctx, request)
		handleResponse(ctx, w, resp, err)
	})
}

func parseRequest(r *http.Request, method string, req any) error {
	switch method {
	case http.MethodGet:
		v := reflect.ValueOf(req).Elem()
		for i := 0; i < v.NumField(); i++ {
			name := v.Type().Field(i).Tag.Get("json")
			queryVal := r.URL.Query().Get(name)
			if queryVal == "" {
				continue
			}

			switch v.Field(i).Kind() {
			case reflect.String:
				v.Field(i).SetString(queryVal)

			case reflect.Int, reflect.Int64:
				val, err := strconv.ParseInt(queryVal, 10, 64)
				if err != nil {
					return err
				}
				v.Field(i).SetInt(val)

			case reflect.Uint64:
				val, err := strconv.ParseUint(queryVal, 10, 64)
				if err != nil {
					return err
				}
				v.Field(i).SetUint(val)

			case reflect.Bool:
				val, err := strconv.ParseBool(queryVal)
				if err != nil {
					return err
				}
				v.Field(i).SetBool(val)
			}
		}

		return nil

	case http.MethodPost:
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return err
		}

		if len(b) == 0 {
			return nil
		}

		return json.Unmarshal(b, req)
	}

	return nil
}
