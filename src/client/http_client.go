package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

type HttpClient struct {
	Timeout time.Duration
}

func (h *HttpClient) Get(ctx context.Context, url string) ([]byte, error) {
	timeout := h.Timeout
	if timeout == 0 {
		timeout = time.Second * 10
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}

	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)

	if err != nil {
		return nil, err
	}

	if res.StatusCode >= 400 {
		return nil, errors.New(fmt.Sprintf("request failed with status %d: %s", res.StatusCode, string(body)))
	}

	return body, nil
}

func (h *HttpClient) Post(ctx context.Context, url string) ([]byte, error) {
	timeout := h.Timeout
	if timeout == 0 {
		timeout = time.Second * 10
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, "POST", url, nil)
	if err != nil {
		return nil, err
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}

	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)

	if err != nil {
		return nil, err
	}

	if res.StatusCode >= 400 {
		return nil, errors.New(fmt.Sprintf("request failed with status %d: %s", res.StatusCode, string(body)))
	}

	return body, nil
}
