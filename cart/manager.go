// Package cart owns the shopping cart lines and the browsing history of one client.
package cart

import (
	"encoding/json"
	"slices"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"go-storefront/models"
	"go-storefront/storage"
)

// Storage keys for the persisted snapshots. Both values are plain JSON arrays.
const (
	CartKey    = "cartItems"
	HistoryKey = "browsingHistory"
)

// MaxHistory bounds the browsing history
const MaxHistory = 20

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrOutOfStock      = errors.New("product is out of stock")
)

// Manager holds the cart of one client and persists every change to a Store.
// A Manager is not safe for concurrent use.
type Manager struct {
	store   storage.Store
	log     logrus.FieldLogger
	lines   []models.CartLine
	history []string
	// last write error per storage key
	unsaved map[string]error
}

// NewManager rehydrates a Manager from store. Missing or unreadable state
// starts the cart and history empty.
func NewManager(store storage.Store, logger logrus.FieldLogger) *Manager {
	m := &Manager{
		store:   store,
		log:     logger,
		lines:   []models.CartLine{},
		history: []string{},
		unsaved: map[string]error{},
	}
	m.lines = m.loadLines()
	m.history = m.loadHistory()
	return m
}

func (m *Manager) loadLines() []models.CartLine {
	data, err := m.store.Get(CartKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.log.WithError(err).Warn("read persisted cart, starting empty")
		}
		return []models.CartLine{}
	}
	var lines []models.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		m.log.WithError(err).Warn("malformed persisted cart, starting empty")
		return []models.CartLine{}
	}
	if err := checkLines(lines); err != nil {
		m.log.WithError(err).Warn("persisted cart violates line invariants, starting empty")
		return []models.CartLine{}
	}
	if lines == nil {
		lines = []models.CartLine{}
	}
	return lines
}

func checkLines(lines []models.CartLine) error {
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if line.ID == "" {
			return errors.New("line without product id")
		}
		if _, dup := seen[line.ID]; dup {
			return errors.Errorf("duplicate line %s", line.ID)
		}
		seen[line.ID] = struct{}{}
		if line.Quantity < 1 || line.Quantity > line.Stock {
			return errors.Errorf("line %s quantity %d outside [1, %d]", line.ID, line.Quantity, line.Stock)
		}
		if line.Price.IsNegative() {
			return errors.Errorf("line %s has negative price", line.ID)
		}
	}
	return nil
}

func (m *Manager) loadHistory() []string {
	data, err := m.store.Get(HistoryKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.log.WithError(err).Warn("read persisted browsing history, starting empty")
		}
		return []string{}
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		m.log.WithError(err).Warn("malformed persisted browsing history, starting empty")
		return []string{}
	}
	history := []string{}
	for _, id := range ids {
		if id == "" || slices.Contains(history, id) {
			continue
		}
		history = append(history, id)
		if len(history) == MaxHistory {
			break
		}
	}
	return history
}

// AddToCart adds quantity units of product. The stored quantity never exceeds
// product.Stock; the resulting line is returned. An existing line takes the
// product snapshot passed in.
func (m *Manager) AddToCart(product models.Product, quantity int) (models.CartLine, error) {
	if quantity < 1 {
		return models.CartLine{}, ErrInvalidQuantity
	}
	if product.Stock < 1 {
		return models.CartLine{}, ErrOutOfStock
	}

	for i, line := range m.lines {
		if line.ID == product.ID {
			m.lines[i].Product = product
			m.lines[i].Quantity = min(line.Quantity+quantity, product.Stock)
			m.persistLines()
			return m.lines[i], nil
		}
	}

	line := models.CartLine{Product: product, Quantity: min(quantity, product.Stock)}
	m.lines = append(m.lines, line)
	m.persistLines()
	return line, nil
}

// RemoveFromCart deletes the line for productID. It reports whether a line was removed.
func (m *Manager) RemoveFromCart(productID string) bool {
	for i, line := range m.lines {
		if line.ID == productID {
			m.lines = append(m.lines[:i:i], m.lines[i+1:]...)
			m.persistLines()
			return true
		}
	}
	return false
}

// UpdateQuantity sets the quantity of productID clamped to [0, stock]. A
// resulting quantity of 0 removes the line. It reports whether the line existed.
func (m *Manager) UpdateQuantity(productID string, quantity int) bool {
	for i, line := range m.lines {
		if line.ID != productID {
			continue
		}
		q := max(0, min(quantity, line.Stock))
		if q == 0 {
			return m.RemoveFromCart(productID)
		}
		m.lines[i].Quantity = q
		m.persistLines()
		return true
	}
	return false
}

// ClearCart empties the cart. Browsing history is kept.
func (m *Manager) ClearCart() {
	m.lines = []models.CartLine{}
	m.persistLines()
}

// CartTotal is the sum of price * quantity over all lines
func (m *Manager) CartTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range m.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// ItemCount is the sum of quantities over all lines
func (m *Manager) ItemCount() int {
	count := 0
	for _, line := range m.lines {
		count += line.Quantity
	}
	return count
}

// Lines returns a copy of the cart lines in insertion order
func (m *Manager) Lines() []models.CartLine {
	return append([]models.CartLine{}, m.lines...)
}

// Line returns the line for productID
func (m *Manager) Line(productID string) (models.CartLine, bool) {
	for _, line := range m.lines {
		if line.ID == productID {
			return line, true
		}
	}
	return models.CartLine{}, false
}

// IsEmpty reports whether the cart has no lines
func (m *Manager) IsEmpty() bool {
	return len(m.lines) == 0
}

// AddToBrowsingHistory moves productID to the front of the history
func (m *Manager) AddToBrowsingHistory(productID string) {
	history := make([]string, 0, MaxHistory)
	history = append(history, productID)
	for _, id := range m.history {
		if id != productID && len(history) < MaxHistory {
			history = append(history, id)
		}
	}
	m.history = history
	m.persistHistory()
}

// BrowsingHistory returns the viewed product ids, most recent first
func (m *Manager) BrowsingHistory() []string {
	return append([]string{}, m.history...)
}

// Summary returns the cart with its derived aggregates
func (m *Manager) Summary() models.CartSummary {
	return models.CartSummary{
		Items:           m.Lines(),
		Total:           m.CartTotal(),
		ItemCount:       m.ItemCount(),
		BrowsingHistory: m.BrowsingHistory(),
		Saved:           m.PersistError() == nil,
	}
}

// PersistError returns the outstanding write error for the cart or the
// history, or nil when the store matches the in-memory state.
func (m *Manager) PersistError() error {
	for _, key := range []string{CartKey, HistoryKey} {
		if err := m.unsaved[key]; err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) persistLines() {
	m.persist(CartKey, m.lines)
}

func (m *Manager) persistHistory() {
	m.persist(HistoryKey, m.history)
}

// persist failures leave the in-memory state authoritative for this session
func (m *Manager) persist(key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		m.log.WithError(err).WithField("key", key).Error("encode cart state")
		m.unsaved[key] = err
		return
	}
	if err := m.store.Set(key, data); err != nil {
		m.log.WithError(err).WithField("key", key).Warn("persist cart state")
		m.unsaved[key] = err
		return
	}
	delete(m.unsaved, key)
}
