package storage

import (
	"crypto/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/utils"
)

func newSigner() *utils.Signer {
	return utils.NewSigner([]byte("test-secret"), time.Hour)
}

// carry copies the cookies set on a response into a fresh request
func carry(t *testing.T, rec *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			continue
		}
		r.AddCookie(c)
	}
	return r
}

func TestCookieStoreRoundTrip(t *testing.T) {
	signer := newSigner()
	rec := httptest.NewRecorder()
	store := NewCookieStore(httptest.NewRequest(http.MethodGet, "/", nil), rec, signer, time.Hour)

	value := []byte(`[{"id":"p1","quantity":2}]`)
	require.NoError(t, store.Set("cartItems", value))

	got, err := store.Get("cartItems")
	require.NoError(t, err)
	assert.Equal(t, value, got, "writes are visible within the same request")

	next := NewCookieStore(carry(t, rec), httptest.NewRecorder(), signer, time.Hour)
	got, err = next.Get("cartItems")
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestCookieStoreRejectsTampering(t *testing.T) {
	signer := newSigner()
	rec := httptest.NewRecorder()
	store := NewCookieStore(httptest.NewRequest(http.MethodGet, "/", nil), rec, signer, time.Hour)
	require.NoError(t, store.Set("cartItems", []byte(`[]`)))

	cookie := rec.Result().Cookies()[0]

	t.Run("modified token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value + "x"})
		_, err := NewCookieStore(r, httptest.NewRecorder(), signer, time.Hour).Get("cartItems")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("value moved to another key", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: CookiePrefix + "browsingHistory", Value: cookie.Value})
		_, err := NewCookieStore(r, httptest.NewRecorder(), signer, time.Hour).Get("browsingHistory")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("other secret", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(cookie)
		other := utils.NewSigner([]byte("another-secret"), time.Hour)
		_, err := NewCookieStore(r, httptest.NewRecorder(), other, time.Hour).Get("cartItems")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCookieStoreTooLarge(t *testing.T) {
	store := NewCookieStore(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder(), newSigner(), time.Hour)

	// random bytes do not compress
	value := make([]byte, 4000)
	_, err := rand.Read(value)
	require.NoError(t, err)

	err = store.Set("cartItems", value)
	assert.ErrorIs(t, err, ErrValueTooLarge)

	_, err = store.Get("cartItems")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCookieStoreClear(t *testing.T) {
	signer := newSigner()
	rec := httptest.NewRecorder()
	store := NewCookieStore(httptest.NewRequest(http.MethodGet, "/", nil), rec, signer, time.Hour)
	require.NoError(t, store.Set("cartItems", []byte(`[]`)))
	require.NoError(t, store.Set("browsingHistory", []byte(`["p1"]`)))

	r := carry(t, rec)
	r.AddCookie(&http.Cookie{Name: "unrelated", Value: "1"})
	clearRec := httptest.NewRecorder()
	next := NewCookieStore(r, clearRec, signer, time.Hour)
	require.NoError(t, next.Clear())

	_, err := next.Get("cartItems")
	assert.ErrorIs(t, err, ErrNotFound)

	expired := map[string]bool{}
	for _, c := range clearRec.Result().Cookies() {
		expired[c.Name] = c.MaxAge < 0
	}
	assert.True(t, expired[CookiePrefix+"cartItems"])
	assert.True(t, expired[CookiePrefix+"browsingHistory"])
	_, touched := expired["unrelated"]
	assert.False(t, touched)
}
