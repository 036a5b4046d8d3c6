// Package solid implementa pod.Store contra un servidor Solid (LDP sobre HTTPS).
package solid

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"idhealth/internal/adapters/storage/turtle"
	"idhealth/internal/platform/httpclient"
	"idhealth/internal/ports/pod"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const containerLink = `<http://www.w3.org/ns/ldp#BasicContainer>; rel="type"`

type Store struct {
	http   *httpclient.Client
	tracer trace.Tracer
}

func NewStore(c *httpclient.Client) *Store {
	return &Store{
		http:   c,
		tracer: otel.Tracer("idhealth/storage/solid"),
	}
}

func (s *Store) GetDataset(ctx context.Context, url string) (ds *pod.Dataset, err error) {
	ctx, span := s.start(ctx, "solid.GetDataset", url)
	defer func() { end(span, err) }()

	resp, err := s.http.Do(ctx, httpclient.Request{
		Method:    http.MethodGet,
		PathOrURL: url,
		Headers:   s.headers(ctx, map[string]string{"Accept": turtle.ContentType}),
	})
	if err != nil {
		return nil, fmt.Errorf("solid: get %s: %w: %w", url, pod.ErrUpstream, err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if err := statusErr("get", url, resp); err != nil {
		return nil, err
	}

	ds, err = turtle.Decode(url, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("solid: %w: %w", pod.ErrUpstream, err)
	}
	ds.ETag = resp.Header.Get("ETag")
	return ds, nil
}

func (s *Store) SaveDataset(ctx context.Context, ds *pod.Dataset) (err error) {
	ctx, span := s.start(ctx, "solid.SaveDataset", ds.URL)
	defer func() { end(span, err) }()

	body, err := turtle.Encode(ds)
	if err != nil {
		return err
	}

	h := map[string]string{"Content-Type": turtle.ContentType}
	if ds.ETag == "" {
		h["If-None-Match"] = "*"
	} else {
		h["If-Match"] = ds.ETag
	}

	resp, err := s.http.Do(ctx, httpclient.Request{
		Method:    http.MethodPut,
		PathOrURL: ds.URL,
		Headers:   s.headers(ctx, h),
		Body:      body,
	})
	if err != nil {
		return fmt.Errorf("solid: put %s: %w: %w", ds.URL, pod.ErrUpstream, err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if err := statusErr("put", ds.URL, resp); err != nil {
		return err
	}

	ds.ETag = resp.Header.Get("ETag")
	return nil
}

// CreateContainer es idempotente: un contenedor ya existente no es error.
func (s *Store) CreateContainer(ctx context.Context, url string) (err error) {
	if !strings.HasSuffix(url, "/") {
		url += "/"
	}
	ctx, span := s.start(ctx, "solid.CreateContainer", url)
	defer func() { end(span, err) }()

	resp, err := s.http.Do(ctx, httpclient.Request{
		Method:    http.MethodPut,
		PathOrURL: url,
		Headers: s.headers(ctx, map[string]string{
			"Content-Type":  turtle.ContentType,
			"Link":          containerLink,
			"If-None-Match": "*",
		}),
	})
	if err != nil {
		return fmt.Errorf("solid: create %s: %w: %w", url, pod.ErrUpstream, err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode == http.StatusPreconditionFailed || resp.StatusCode == http.StatusConflict {
		return nil
	}
	return statusErr("create", url, resp)
}

func (s *Store) ListContained(ctx context.Context, containerURL string) (urls []string, err error) {
	if !strings.HasSuffix(containerURL, "/") {
		containerURL += "/"
	}
	ctx, span := s.start(ctx, "solid.ListContained", containerURL)
	defer func() { end(span, err) }()

	resp, err := s.http.Do(ctx, httpclient.Request{
		Method:    http.MethodGet,
		PathOrURL: containerURL,
		Headers:   s.headers(ctx, map[string]string{"Accept": turtle.ContentType}),
	})
	if err != nil {
		return nil, fmt.Errorf("solid: list %s: %w: %w", containerURL, pod.ErrUpstream, err)
	}
	if err := statusErr("list", containerURL, resp); err != nil {
		return nil, err
	}
	urls, err = turtle.Contained(containerURL, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("solid: %w: %w", pod.ErrUpstream, err)
	}
	span.SetAttributes(attribute.Int("pod.contained", len(urls)))
	return urls, nil
}

func (s *Store) Exists(ctx context.Context, url string) (ok bool, err error) {
	ctx, span := s.start(ctx, "solid.Exists", url)
	defer func() { end(span, err) }()

	resp, err := s.http.Do(ctx, httpclient.Request{
		Method:    http.MethodHead,
		PathOrURL: url,
		Headers:   s.headers(ctx, nil),
	})
	if err != nil {
		return false, fmt.Errorf("solid: head %s: %w: %w", url, pod.ErrUpstream, err)
	}
	if err := statusErr("head", url, resp); err != nil {
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// headers agrega el token del usuario guardado en ctx.
func (s *Store) headers(ctx context.Context, h map[string]string) map[string]string {
	if h == nil {
		h = map[string]string{}
	}
	if tok := pod.AccessToken(ctx); tok != "" {
		h["Authorization"] = "Bearer " + tok
	}
	return h
}

func (s *Store) start(ctx context.Context, name, url string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("pod.url", url)))
}

func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func statusErr(op, url string, resp httpclient.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	he := &httpclient.HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(resp.Body))}
	switch resp.StatusCode {
	case http.StatusNotFound, http.StatusGone:
		return fmt.Errorf("solid: %s %s: %w", op, url, pod.ErrNotFound)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("solid: %s %s: %w: %w", op, url, pod.ErrUnauthorized, he)
	case http.StatusPreconditionFailed:
		return fmt.Errorf("solid: %s %s: %w", op, url, pod.ErrPreconditionFailed)
	default:
		return fmt.Errorf("solid: %s %s: %w: %w", op, url, pod.ErrUpstream, he)
	}
}
