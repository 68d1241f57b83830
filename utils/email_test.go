package utils

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/payment"
)

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type recordingMailer struct {
	to, subject, body string
	err               error
}

func (m *recordingMailer) SendEmail(to, subject, body string) error {
	m.to, m.subject, m.body = to, subject, body
	return m.err
}

func TestSendOrderConfirmationEmail(t *testing.T) {
	m := &recordingMailer{}
	err := SendOrderConfirmationEmail(m, payment.SessionDetails{
		ID:            "cs_test_1",
		CustomerEmail: "ada@example.com",
		AmountTotal:   decimal.RequireFromString("119.98"),
		Currency:      "inr",
		Paid:          true,
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", m.to)
	assert.Equal(t, "Order Confirmation", m.subject)
	assert.Contains(t, m.body, "cs_test_1")
	assert.Contains(t, m.body, "119.98 INR")

	err = SendOrderConfirmationEmail(m, payment.SessionDetails{ID: "cs_test_2"})
	assert.Error(t, err)
}

func TestPostmarkMailer(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/email", r.URL.Path)
		assert.Equal(t, "server-token", r.Header.Get("X-Postmark-Server-Token"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		if got["To"] == "bounce@example.com" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"ErrorCode":300,"Message":"Invalid email request"}`))
			return
		}
		_, _ = w.Write([]byte(`{"To":"ada@example.com","SubmittedAt":"2024-01-01T00:00:00Z","MessageID":"m-1","ErrorCode":0,"Message":"OK"}`))
	}))
	defer srv.Close()

	m := NewPostmarkMailer("server-token", "orders@example.com")
	m.client.BaseURL = srv.URL

	require.NoError(t, m.SendEmail("ada@example.com", "Hello", "<b>hi</b>"))
	assert.Equal(t, "orders@example.com", got["From"])
	assert.Equal(t, "ada@example.com", got["To"])
	assert.Equal(t, "Hello", got["Subject"])
	assert.Equal(t, "<b>hi</b>", got["HtmlBody"])

	assert.Error(t, m.SendEmail("bounce@example.com", "Hello", "hi"))
}

func TestSendgridMailer(t *testing.T) {
	m := NewSendgridMailer("key", "orders@example.com")

	var sent *mail.SGMailV3
	m.send = func(msg *mail.SGMailV3) (int, string, error) {
		sent = msg
		return http.StatusAccepted, "", nil
	}
	require.NoError(t, m.SendEmail("ada@example.com", "Hello", "<b>hi</b>"))
	require.NotNil(t, sent)
	assert.Equal(t, "orders@example.com", sent.From.Address)
	assert.Equal(t, "Hello", sent.Subject)
	require.Len(t, sent.Personalizations, 1)
	assert.Equal(t, "ada@example.com", sent.Personalizations[0].To[0].Address)

	m.send = func(*mail.SGMailV3) (int, string, error) {
		return http.StatusUnauthorized, `{"errors":[]}`, nil
	}
	assert.Error(t, m.SendEmail("ada@example.com", "Hello", "hi"))

	m.send = func(*mail.SGMailV3) (int, string, error) {
		return 0, "", errors.New("dial tcp: refused")
	}
	assert.Error(t, m.SendEmail("ada@example.com", "Hello", "hi"))
}

func TestNewMailer(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    interface{}
		wantErr bool
	}{
		{name: "no provider", cfg: Config{}, want: LogMailer{}},
		{name: "explicit none", cfg: Config{MailProvider: "none", PostmarkAPIToken: "t"}, want: &PostmarkMailer{}},
		{name: "postmark token only", cfg: Config{PostmarkAPIToken: "t"}, want: &PostmarkMailer{}},
		{name: "sendgrid key only", cfg: Config{SendgridAPIKey: "k"}, want: &SendgridMailer{}},
		{name: "postmark", cfg: Config{MailProvider: "postmark", PostmarkAPIToken: "t"}, want: &PostmarkMailer{}},
		{name: "sendgrid", cfg: Config{MailProvider: "sendgrid", SendgridAPIKey: "k"}, want: &SendgridMailer{}},
		{name: "postmark without token", cfg: Config{MailProvider: "postmark"}, wantErr: true},
		{name: "sendgrid without key", cfg: Config{MailProvider: "sendgrid"}, wantErr: true},
		{name: "unknown", cfg: Config{MailProvider: "pigeon"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMailer(tt.cfg, quietLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, m)
		})
	}
}
