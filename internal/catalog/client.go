// Package catalog is a client for the commerce platform's admin GraphQL API.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/machinebox/graphql"
	"github.com/pkg/errors"

	"github.com/fairyhunter13/product-description-generator/internal/config"
	"github.com/fairyhunter13/product-description-generator/internal/model"
)

// AccessTokenHeader authenticates admin API requests.
const AccessTokenHeader = "X-Shopify-Access-Token"

// Client reads products and writes descriptions. It keeps no state between
// calls besides the HTTP client.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
	gql        *graphql.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. Its transport is wrapped
// to add the access token.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

// New builds a client for the configured shop. The shop domain may be a bare
// host (https is assumed) or a base URL with scheme.
func New(cfg config.Commerce, opts ...Option) *Client {
	c := &Client{
		endpoint:   Endpoint(cfg.ShopDomain, cfg.APIVersion),
		token:      cfg.AccessToken,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
	for _, o := range opts {
		o(c)
	}
	next := c.httpClient.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	hc := *c.httpClient
	hc.Transport = &tokenTransport{token: c.token, next: next}
	c.gql = graphql.NewClient(c.endpoint, graphql.WithHTTPClient(&hc))
	return c
}

// Endpoint returns the admin GraphQL URL for a shop and API version.
func Endpoint(shop, version string) string {
	base := strings.TrimRight(shop, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return fmt.Sprintf("%s/admin/api/%s/graphql.json", base, version)
}

type variantEdge struct {
	Node model.Variant `json:"node"`
}

type productNode struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Variants    struct {
		Edges []variantEdge `json:"edges"`
	} `json:"variants"`
}

type productsData struct {
	Products struct {
		Edges []struct {
			Node productNode `json:"node"`
		} `json:"edges"`
	} `json:"products"`
}

// productInput always serializes descriptionHtml, including "".
type productInput struct {
	ID              string `json:"id"`
	DescriptionHTML string `json:"descriptionHtml"`
}

type productUpdateData struct {
	ProductUpdate *model.ProductUpdate `json:"productUpdate"`
}

// FetchProducts reads the first pageSize products, each with up to pageSize
// variants. There is no retry and no cursor.
func (c *Client) FetchProducts(ctx context.Context, pageSize int) ([]model.Product, error) {
	var data productsData
	if err := c.run(ctx, productsQuery, map[string]any{"first": pageSize}, &data); err != nil {
		return nil, errors.Wrap(err, "products query")
	}
	products := make([]model.Product, 0, len(data.Products.Edges))
	for _, e := range data.Products.Edges {
		n := e.Node
		p := model.Product{
			ID:          n.ID,
			Title:       n.Title,
			Description: n.Description,
			Status:      n.Status,
		}
		for _, v := range n.Variants.Edges {
			p.Variants = append(p.Variants, v.Node)
		}
		products = append(products, p)
	}
	return products, nil
}

// UpdateDescription sets the product's description. User errors are returned
// in the payload, not as an error.
func (c *Client) UpdateDescription(ctx context.Context, productID, descriptionHTML string) (*model.ProductUpdate, error) {
	vars := map[string]any{"input": productInput{ID: productID, DescriptionHTML: descriptionHTML}}
	var data productUpdateData
	if err := c.run(ctx, productUpdateMutation, vars, &data); err != nil {
		return nil, errors.Wrapf(err, "productUpdate %s", productID)
	}
	if data.ProductUpdate == nil {
		return nil, errors.Errorf("productUpdate %s: empty payload", productID)
	}
	return data.ProductUpdate, nil
}

func (c *Client) run(ctx context.Context, query string, vars map[string]any, out any) error {
	req := graphql.NewRequest(query)
	for k, v := range vars {
		req.Var(k, v)
	}
	return c.gql.Run(ctx, req, out)
}

// tokenTransport authenticates every request and turns non-2xx responses
// into errors before the GraphQL layer decodes them.
type tokenTransport struct {
	token string
	next  http.RoundTripper
}

func (t *tokenTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set(AccessTokenHeader, t.token)
	resp, err := t.next.RoundTrip(r)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		return nil, errors.Errorf("request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return resp, nil
}
