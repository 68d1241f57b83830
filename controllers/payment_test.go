package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/payment"
)

type recordingGateway struct {
	req     payment.SessionRequest
	session payment.Session
	err     error
}

func (g *recordingGateway) CreateSession(_ context.Context, req payment.SessionRequest) (payment.Session, error) {
	g.req = req
	return g.session, g.err
}

func TestCreateCheckoutSession(t *testing.T) {
	const body = `{"items":[{"name":"Yoga Mat","imageUrl":"/img/mat.jpg","price":1799,"quantity":2}],"email":"ada@example.com"}`

	t.Run("returns the session", func(t *testing.T) {
		gw := &recordingGateway{session: payment.Session{ID: "cs_1", URL: "https://pay.example/cs_1"}}
		pc := NewPaymentController(gw, quietLogger())

		rec := do(t, pc.CreateCheckoutSession, request{method: http.MethodPost, target: "/api/create-checkout-session", body: body})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]string
		decode(t, rec, &resp)
		assert.Equal(t, "cs_1", resp["sessionId"])
		assert.Equal(t, "https://pay.example/cs_1", resp["url"])

		require.Len(t, gw.req.Items, 1)
		assert.Equal(t, "1799", gw.req.Items[0].Price.String())
		assert.Equal(t, "ada@example.com", gw.req.Email)
		assert.NotEmpty(t, gw.req.AttemptID)
	})

	t.Run("gateway failure", func(t *testing.T) {
		gw := &recordingGateway{err: payment.ErrSessionCreation}
		pc := NewPaymentController(gw, quietLogger())

		rec := do(t, pc.CreateCheckoutSession, request{method: http.MethodPost, target: "/api/create-checkout-session", body: body})
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		var resp map[string]string
		decode(t, rec, &resp)
		assert.Equal(t, "Failed to create checkout session", resp["error"])
	})

	t.Run("bad input", func(t *testing.T) {
		pc := NewPaymentController(&recordingGateway{}, quietLogger())
		for _, bad := range []string{`{`, `{"items":[],"email":"ada@example.com"}`, `{"items":[{"name":"x","price":1,"quantity":0}],"email":"a@b.c"}`} {
			rec := do(t, pc.CreateCheckoutSession, request{method: http.MethodPost, target: "/api/create-checkout-session", body: bad})
			assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
		}
	})
}
