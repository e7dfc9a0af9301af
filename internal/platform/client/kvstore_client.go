package client

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"kvstore/internal/domain"

	"github.com/go-resty/resty/v2"
)

const (
	entries_endpoint = "/db/"
	requestTimeout   = 10 * time.Second
)

// KVStoreClient talks to a remote HTTP API and satisfies
// domain.EntryRepository, so the command loop can run against it.
type KVStoreClient struct {
	client    *resty.Client
	serverUrl string
}

type entryBody struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func NewKVStoreClient(serverUrl string) *KVStoreClient {
	return &KVStoreClient{
		client:    resty.New().SetTimeout(requestTimeout),
		serverUrl: serverUrl,
	}
}

func (c *KVStoreClient) uri(key string) string {
	return c.serverUrl + entries_endpoint + url.PathEscape(key)
}

func (c *KVStoreClient) Save(e domain.Entry) (domain.Entry, error) {
	var resp entryBody
	res, err := c.client.R().
		SetHeader("Content-Type", "text/plain").
		SetBody(e.Value()).
		SetResult(&resp).
		Post(c.uri(e.Key()))
	if err != nil {
		return domain.Entry{}, err
	}
	if res.StatusCode() != http.StatusCreated {
		return domain.Entry{}, fmt.Errorf("save %q: unexpected status %d", e.Key(), res.StatusCode())
	}
	return domain.NewEntry(resp.Key, resp.Value), nil
}

func (c *KVStoreClient) Get(key string) (domain.Entry, bool, error) {
	var resp entryBody
	res, err := c.client.R().SetResult(&resp).Get(c.uri(key))
	if err != nil {
		return domain.Entry{}, false, err
	}
	switch res.StatusCode() {
	case http.StatusOK:
		return domain.NewEntry(resp.Key, resp.Value), true, nil
	case http.StatusNotFound:
		return domain.Entry{}, false, nil
	default:
		return domain.Entry{}, false, fmt.Errorf("get %q: unexpected status %d", key, res.StatusCode())
	}
}
