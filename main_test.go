package main

import (
	"bytes"
	"io"
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// isolate clears configuration that would send the commands to external services
func isolate(t *testing.T) {
	t.Helper()
	for _, key := range []string{"MONGODB_URI", "CATALOG_FILE", "STRIPE_SECRET_KEY", "PAYMENT_ENDPOINT", "MAIL_PROVIDER"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp(quietLogger())
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"storefront"}, args...))
	return out.String(), err
}

func TestProductsCommand(t *testing.T) {
	isolate(t)

	out, err := run(t, "products", "--category", "Electronics", "--sort", "price-asc")
	require.NoError(t, err)
	speaker := strings.Index(out, "Portable Bluetooth Speaker")
	watch := strings.Index(out, "Smart Fitness Watch")
	require.NotEqual(t, -1, speaker)
	require.NotEqual(t, -1, watch)
	assert.Less(t, speaker, watch)
	assert.NotContains(t, out, "Yoga Mat")

	out, err = run(t, "products", "--search", "nothing-matches-this")
	require.NoError(t, err)
	assert.Contains(t, out, "No products found.")

	_, err = run(t, "products", "--sort", "cheapest")
	assert.Error(t, err)
}

func TestCartCommands(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	cart := func(args ...string) (string, error) {
		return run(t, append([]string{"cart", "--state-dir", dir}, args...)...)
	}

	out, err := cart("add", "--qty", "2", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Classic Leather Wallet: 2 in cart")

	_, err = cart("add", "8")
	assert.Error(t, err, "out of stock")

	_, err = cart("add", "404")
	assert.Error(t, err)

	out, err = cart("show")
	require.NoError(t, err)
	assert.Contains(t, out, "2998.00")

	out, err = cart("view", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Related products:")

	out, err = cart("history")
	require.NoError(t, err)
	assert.Contains(t, out, "Wireless Noise-Cancelling Headphones")

	_, err = cart("update", "3", "1")
	assert.Error(t, err)

	out, err = cart("update", "1", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty.")

	out, err = cart("history")
	require.NoError(t, err)
	assert.Contains(t, out, "Wireless Noise-Cancelling Headphones", "history survives cart changes")
}

func TestCartCheckoutWithSandbox(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	cart := func(args ...string) (string, error) {
		return run(t, append([]string{"cart", "--state-dir", dir}, args...)...)
	}
	form := []string{
		"--name", "Ada Lovelace",
		"--email", "ada@example.com",
		"--address", "12 Analytical Row",
		"--city", "London",
		"--postal-code", "N1 9GU",
		"--country", "UK",
		"--expiry", "12/30",
		"--cvv", "123",
	}

	_, err := cart(append([]string{"checkout", "--card", "4242424242424242"}, form...)...)
	assert.Error(t, err, "empty cart")

	_, err = cart("add", "12")
	require.NoError(t, err)

	out, err := cart(append([]string{"checkout", "--card", "424242424242424"}, form...)...)
	assert.Error(t, err)
	assert.Contains(t, out, "Invalid card number (must be 16 digits).")

	out, err = cart(append([]string{"checkout", "--card", "4242424242424242"}, form...)...)
	require.NoError(t, err)
	id := regexp.MustCompile(`cart complete (cs_sandbox_[0-9a-f]+)`).FindStringSubmatch(out)
	require.Len(t, id, 2, out)

	out, err = cart("complete", id[1])
	require.NoError(t, err)
	assert.Contains(t, out, "Order reference:")

	out, err = cart("show")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty.")
}
