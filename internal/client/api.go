package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/franciscosanchezn/food-ordering-api/internal/models"
)

const defaultTimeout = 15 * time.Second

// ErrNotAuthenticated is returned before calling a protected endpoint without a token
var ErrNotAuthenticated = errors.New("not authenticated")

// APIError is a non-2xx answer from the API
type APIError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// OrderLine is one line of an order request
type OrderLine struct {
	MenuItemID uint `json:"menu_item_id"`
	Quantity   int  `json:"quantity"`
}

// OrderRequest is the body of POST /api/orders. It has no price fields,
// totals are computed by the server.
type OrderRequest struct {
	RestaurantID        uint                 `json:"restaurant_id"`
	Items               []OrderLine          `json:"items"`
	DeliveryAddress     string               `json:"delivery_address"`
	PaymentMethod       models.PaymentMethod `json:"payment_method"`
	SpecialInstructions string               `json:"special_instructions,omitempty"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Token   string          `json:"token"`
	User    *models.User    `json:"user"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
}

// APIClient talks to the REST API and attaches the session bearer token
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	session    Session
}

type Option func(*APIClient)

func WithHTTPClient(c *http.Client) Option {
	return func(a *APIClient) { a.httpClient = c }
}

func NewAPIClient(baseURL string, session Session, opts ...Option) *APIClient {
	if session == nil {
		session = NewMemoryTokenStore()
	}
	a := &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		session:    session,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *APIClient) Session() Session {
	return a.session
}

// Register creates an account and stores the returned token
func (a *APIClient) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	return a.authenticate(ctx, "/api/auth/register", req)
}

// Login stores the returned token in the session
func (a *APIClient) Login(ctx context.Context, email, password string) (*models.User, error) {
	return a.authenticate(ctx, "/api/auth/login", map[string]string{"email": email, "password": password})
}

func (a *APIClient) Logout() {
	a.session.Clear()
}

func (a *APIClient) authenticate(ctx context.Context, path string, body interface{}) (*models.User, error) {
	env, err := a.do(ctx, http.MethodPost, path, body, false)
	if err != nil {
		return nil, err
	}
	if env.Token == "" {
		return nil, fmt.Errorf("%s: response carried no token", path)
	}
	a.session.Save(env.Token, env.User)
	return env.User, nil
}

func (a *APIClient) Restaurants(ctx context.Context, category string) ([]models.Restaurant, error) {
	path := "/api/restaurants"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}
	var restaurants []models.Restaurant
	if err := a.getData(ctx, path, false, &restaurants); err != nil {
		return nil, err
	}
	return restaurants, nil
}

func (a *APIClient) Menu(ctx context.Context, restaurantID uint) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := a.getData(ctx, fmt.Sprintf("/api/restaurants/%d/menu", restaurantID), false, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// MyOrders returns the orders of the session user, newest first
func (a *APIClient) MyOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := a.getData(ctx, "/api/orders", true, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (a *APIClient) Order(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := a.getData(ctx, "/api/orders/"+strconv.FormatUint(uint64(id), 10), true, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (a *APIClient) CreateOrder(ctx context.Context, req OrderRequest) (*models.Order, error) {
	env, err := a.do(ctx, http.MethodPost, "/api/orders", req, true)
	if err != nil {
		return nil, err
	}
	var order models.Order
	if err := json.Unmarshal(env.Data, &order); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &order, nil
}

func (a *APIClient) getData(ctx context.Context, path string, authed bool, dest interface{}) error {
	env, err := a.do(ctx, http.MethodGet, path, nil, authed)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (a *APIClient) do(ctx context.Context, method, path string, body interface{}, authed bool) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token := a.session.Token()
		if token == "" {
			return nil, ErrNotAuthenticated
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		if resp.StatusCode == http.StatusUnauthorized {
			a.session.Clear()
		}
		message := env.Message
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: message, Code: env.Code}
	}
	return &env, nil
}
