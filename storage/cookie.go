package storage

import (
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// CookiePrefix is prepended to every cookie name written by CookieStore
const CookiePrefix = "sf_"

// maxCookieSize is the per-cookie limit browsers are required to honour
const maxCookieSize = 4096

// ErrValueTooLarge is returned when an encoded value does not fit in a cookie
var ErrValueTooLarge = errors.New("storage: value too large for cookie")

// Signer signs and verifies cookie payloads
type Signer interface {
	Sign(key, value string) (string, error)
	Parse(key, token string) (string, error)
}

// CookieStore keeps values in signed browser cookies for the lifetime of one request.
// Values are snappy-compressed, base64 encoded and wrapped in a signed token; a cookie
// that fails verification reads as absent.
type CookieStore struct {
	r      *http.Request
	w      http.ResponseWriter
	signer Signer
	maxAge time.Duration
	secure bool

	// values written during this request, nil entries mark deletions
	written map[string][]byte
}

// NewCookieStore binds a store to the request and its response writer
func NewCookieStore(r *http.Request, w http.ResponseWriter, signer Signer, maxAge time.Duration) *CookieStore {
	return &CookieStore{
		r:       r,
		w:       w,
		signer:  signer,
		maxAge:  maxAge,
		secure:  r.TLS != nil,
		written: make(map[string][]byte),
	}
}

func (c *CookieStore) Get(key string) ([]byte, error) {
	if v, ok := c.written[key]; ok {
		if v == nil {
			return nil, ErrNotFound
		}
		return append([]byte(nil), v...), nil
	}

	cookie, err := c.r.Cookie(CookiePrefix + key)
	if err != nil {
		return nil, ErrNotFound
	}
	payload, err := c.signer.Parse(key, cookie.Value)
	if err != nil {
		return nil, ErrNotFound
	}
	compressed, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "decode cookie %s", key)
	}
	value, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, errors.Wrapf(err, "decompress cookie %s", key)
	}
	return value, nil
}

func (c *CookieStore) Set(key string, value []byte) error {
	payload := base64.RawURLEncoding.EncodeToString(snappy.Encode(nil, value))
	token, err := c.signer.Sign(key, payload)
	if err != nil {
		return errors.Wrapf(err, "sign cookie %s", key)
	}
	cookie := &http.Cookie{
		Name:     CookiePrefix + key,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if len(cookie.String()) > maxCookieSize {
		return ErrValueTooLarge
	}
	http.SetCookie(c.w, cookie)
	c.written[key] = append([]byte(nil), value...)
	return nil
}

// Clear expires every cookie this store owns
func (c *CookieStore) Clear() error {
	names := make(map[string]struct{})
	for _, cookie := range c.r.Cookies() {
		if strings.HasPrefix(cookie.Name, CookiePrefix) {
			names[strings.TrimPrefix(cookie.Name, CookiePrefix)] = struct{}{}
		}
	}
	for key := range c.written {
		names[key] = struct{}{}
	}
	for key := range names {
		http.SetCookie(c.w, &http.Cookie{
			Name:     CookiePrefix + key,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   c.secure,
			SameSite: http.SameSiteLaxMode,
		})
		c.written[key] = nil
	}
	return nil
}
