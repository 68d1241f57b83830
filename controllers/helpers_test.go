package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"go-storefront/cart"
	"go-storefront/catalog"
	"go-storefront/middleware"
	"go-storefront/storage"
)

const testSessionID = "5f0c7a52-9d59-4b1e-a3c1-0f4c7e2b9a11"

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return c
}

func newCart() *cart.Manager {
	return cart.NewManager(storage.NewMemory(), quietLogger())
}

type request struct {
	method string
	target string
	body   string
	vars   map[string]string
	cart   *cart.Manager
}

// do runs h the way the session middleware and router would
func do(t *testing.T, h http.HandlerFunc, req request) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if req.body != "" {
		body = strings.NewReader(req.body)
	}
	r := httptest.NewRequest(req.method, req.target, body)
	ctx := context.WithValue(r.Context(), middleware.SessionContextKey, testSessionID)
	if req.cart != nil {
		ctx = middleware.WithCart(ctx, req.cart)
	}
	r = r.WithContext(ctx)
	if req.vars != nil {
		r = mux.SetURLVars(r, req.vars)
	}
	rec := httptest.NewRecorder()
	h(rec, r)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v), rec.Body.String())
}
