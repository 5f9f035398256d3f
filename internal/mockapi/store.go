package mockapi

import (
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const seedPassword = "password"

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateCode = errors.New("client code already exists")
	ErrBadPassword   = errors.New("invalid username or password")
)

var (
	products = []string{
		"Laptop Pro", "Cloud Storage Plan", "Office Suite License",
		"Server Hardware", "Network Equipment", "Industrial Software",
		"Safety Equipment", "AI Development Kit", "Testing Tools",
		"Digital Marketing Suite", "Analytics Platform", "IoT Sensors",
		"Machine Learning API", "Smart Home Devices", "Automation Software",
		"Enterprise Security", "Business Intelligence", "CRM System",
	}
	paymentMethods = []string{"CARD", "BANK_TRANSFER", "CASH"}
	expeditions    = []string{"EXPRESS", "STANDARD", "PRIORITY"}
	statuses       = []string{"COMPLETED", "PENDING", "IN_PROGRESS"}
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	passwordHash []byte
}

type Client struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
	City string `json:"city"`
}

type Order struct {
	ID            int64     `json:"id"`
	ProductName   string    `json:"productName"`
	ClientID      int64     `json:"clientId"`
	ClientName    string    `json:"clientName"`
	Quantity      int       `json:"quantity"`
	Price         Amount    `json:"price"`
	OrderDate     string    `json:"orderDate"`
	Type          int       `json:"type"`
	PaymentMethod string    `json:"paymentMethod"`
	Expedition    string    `json:"expedition"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Amount is written as a bare JSON number with two decimals.
type Amount struct {
	decimal.Decimal
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.StringFixed(2)), nil
}

// OrderFilter holds the optional list filters; zero values match everything.
type OrderFilter struct {
	ClientID      int64
	Expedition    string
	PaymentMethod string
	Status        string
	MinPrice      decimal.NullDecimal
	MaxPrice      decimal.NullDecimal
}

func (f OrderFilter) match(o Order) bool {
	switch {
	case f.ClientID != 0 && o.ClientID != f.ClientID:
		return false
	case f.Expedition != "" && !strings.EqualFold(o.Expedition, f.Expedition):
		return false
	case f.PaymentMethod != "" && !strings.EqualFold(o.PaymentMethod, f.PaymentMethod):
		return false
	case f.Status != "" && !strings.EqualFold(o.Status, f.Status):
		return false
	case f.MinPrice.Valid && o.Price.LessThan(f.MinPrice.Decimal):
		return false
	case f.MaxPrice.Valid && o.Price.GreaterThan(f.MaxPrice.Decimal):
		return false
	}
	return true
}

// Store is the in-memory backend state. Orders keep their client id and the
// client name is resolved on read, so renaming a client shows up everywhere.
type Store struct {
	mu sync.RWMutex

	users   []User
	clients []Client
	orders  []Order

	nextClientID int64
	nextOrderID  int64
	now          func() time.Time
}

func NewStore() *Store {
	return &Store{
		nextClientID: 1,
		nextOrderID:  1,
		now:          time.Now,
	}
}

// Seed fills an empty store with the demo users, clients and count random
// orders. All users share the password "password".
func (s *Store) Seed(count int, rng *rand.Rand) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.MinCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if len(s.users) == 0 {
		for i, u := range []struct{ name, role string }{
			{"admin", "ADMIN"},
			{"manager", "MANAGER"},
			{"user1", "USER"},
			{"user2", "USER"},
		} {
			s.users = append(s.users, User{
				ID:           int64(i + 1),
				Username:     u.name,
				Role:         u.role,
				CreatedAt:    now,
				passwordHash: hash,
			})
		}
	}

	if len(s.clients) == 0 {
		for _, c := range []Client{
			{Name: "Acme Corporation", Code: "ACME001", City: "New York"},
			{Name: "Tech Solutions Ltd", Code: "TECH002", City: "San Francisco"},
			{Name: "Global Industries", Code: "GLOB003", City: "Chicago"},
			{Name: "Innovation Systems", Code: "INNO004", City: "Boston"},
			{Name: "Digital Dynamics", Code: "DIGI005", City: "Seattle"},
			{Name: "Future Technologies", Code: "FUTU006", City: "Austin"},
			{Name: "Smart Solutions", Code: "SMAR007", City: "Denver"},
			{Name: "Elite Enterprises", Code: "ELIT008", City: "Miami"},
		} {
			c.ID = s.nextClientID
			s.nextClientID++
			s.clients = append(s.clients, c)
		}
	}

	for i := len(s.orders); i < count; i++ {
		client := s.clients[rng.IntN(len(s.clients))]
		cents := 5000 + rng.Int64N(995000)
		s.orders = append(s.orders, Order{
			ID:            s.nextOrderID,
			ProductName:   products[rng.IntN(len(products))],
			ClientID:      client.ID,
			Quantity:      rng.IntN(5) + 1,
			Price:         Amount{decimal.New(cents, -2)},
			OrderDate:     now.AddDate(0, 0, -rng.IntN(365)).Format(time.DateOnly),
			Type:          rng.IntN(3) + 1,
			PaymentMethod: paymentMethods[rng.IntN(len(paymentMethods))],
			Expedition:    expeditions[rng.IntN(len(expeditions))],
			Status:        statuses[rng.IntN(len(statuses))],
			CreatedAt:     now,
		})
		s.nextOrderID++
	}
	return nil
}

func (s *Store) Authenticate(username, password string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username != username {
			continue
		}
		if err := bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)); err != nil {
			return User{}, ErrBadPassword
		}
		return u, nil
	}
	return User{}, ErrBadPassword
}

func (s *Store) UserByName(username string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (s *Store) Clients() []Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.clients)
}

func (s *Store) Client(id int64) (Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.clientIndex(id)
	if i < 0 {
		return Client{}, ErrNotFound
	}
	return s.clients[i], nil
}

func (s *Store) CreateClient(c Client) (Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.codeTaken(c.Code, 0) {
		return Client{}, ErrDuplicateCode
	}
	c.ID = s.nextClientID
	s.nextClientID++
	s.clients = append(s.clients, c)
	return c, nil
}

func (s *Store) UpdateClient(id int64, c Client) (Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.clientIndex(id)
	if i < 0 {
		return Client{}, ErrNotFound
	}
	if s.codeTaken(c.Code, id) {
		return Client{}, ErrDuplicateCode
	}
	c.ID = id
	s.clients[i] = c
	return c, nil
}

// DeleteClient removes the client and its orders.
func (s *Store) DeleteClient(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.clientIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	s.clients = slices.Delete(s.clients, i, i+1)
	s.orders = slices.DeleteFunc(s.orders, func(o Order) bool { return o.ClientID == id })
	return nil
}

// Orders returns one zero-based page of the orders matching f, in id order,
// and the total number of matches.
func (s *Store) Orders(f OrderFilter, page, size int) ([]Order, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Order
	for _, o := range s.orders {
		if f.match(o) {
			matched = append(matched, s.withClientName(o))
		}
	}

	total := len(matched)
	start := page * size
	if start >= total {
		return []Order{}, total
	}
	end := min(start+size, total)
	return matched[start:end], total
}

func (s *Store) Order(id int64) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.orderIndex(id)
	if i < 0 {
		return Order{}, ErrNotFound
	}
	return s.withClientName(s.orders[i]), nil
}

func (s *Store) CreateOrder(o Order) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clientIndex(o.ClientID) < 0 {
		return Order{}, ErrNotFound
	}
	o.ID = s.nextOrderID
	s.nextOrderID++
	o.CreatedAt = s.now()
	if o.OrderDate == "" {
		o.OrderDate = o.CreatedAt.Format(time.DateOnly)
	}
	s.orders = append(s.orders, o)
	return s.withClientName(o), nil
}

func (s *Store) UpdateOrder(id int64, o Order) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.orderIndex(id)
	if i < 0 {
		return Order{}, ErrNotFound
	}
	if s.clientIndex(o.ClientID) < 0 {
		return Order{}, ErrNotFound
	}

	current := s.orders[i]
	current.ClientID = o.ClientID
	current.ProductName = o.ProductName
	current.Quantity = o.Quantity
	current.Price = o.Price
	if o.OrderDate != "" {
		current.OrderDate = o.OrderDate
	}
	if o.Type != 0 {
		current.Type = o.Type
	}
	if o.PaymentMethod != "" {
		current.PaymentMethod = o.PaymentMethod
	}
	if o.Expedition != "" {
		current.Expedition = o.Expedition
	}
	if o.Status != "" {
		current.Status = o.Status
	}
	s.orders[i] = current
	return s.withClientName(current), nil
}

func (s *Store) DeleteOrder(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.orderIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	s.orders = slices.Delete(s.orders, i, i+1)
	return nil
}

func (s *Store) withClientName(o Order) Order {
	if i := s.clientIndex(o.ClientID); i >= 0 {
		o.ClientName = s.clients[i].Name
	}
	return o
}

func (s *Store) clientIndex(id int64) int {
	return slices.IndexFunc(s.clients, func(c Client) bool { return c.ID == id })
}

func (s *Store) orderIndex(id int64) int {
	return slices.IndexFunc(s.orders, func(o Order) bool { return o.ID == id })
}

func (s *Store) codeTaken(code string, except int64) bool {
	return slices.ContainsFunc(s.clients, func(c Client) bool {
		return c.ID != except && strings.EqualFold(c.Code, code)
	})
}
