package core

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"dbxbridge/lib/scrapers/dropbox/scrape"
	"dbxbridge/lib/scrapers/dropbox/session"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

func (c *Client) isHomeRedirect(res *session.Response) bool {
	if res.StatusCode < http.StatusMultipleChoices || res.StatusCode >= http.StatusBadRequest {
		return false
	}
	location := res.Location(c.endpoints.Login)
	if location == "" {
		return false
	}
	parsed, err := url.Parse(location)
	if err != nil {
		return false
	}
	return strings.HasPrefix(strings.ToLower(parsed.Path), strings.ToLower(c.endpoints.HomeLocation))
}

// Login performs the login handshake, it does nothing if the client is
// already logged in.
func (c *Client) Login(ctx context.Context) error {
	if c.loggedIn {
		return nil
	}

	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	if c.email == "" || c.password == "" {
		span.SetStatus(codes.Error, ErrMissingCredentials.Error())
		return ErrMissingCredentials
	}

	res, err := c.session.Request(ctx, c.endpoints.Login)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch login page")
		return err
	}

	action := c.endpoints.loginAction()
	token, ok := scrape.ParseFormToken(res.Body, action)
	if !ok {
		span.SetStatus(codes.Error, ErrFormTokenNotFound.Error())
		return fmt.Errorf("login form (%s): %w", action, ErrFormTokenNotFound)
	}

	c.session.SetPostFields(map[string]string{
		"login_email":    c.email,
		"login_password": c.password,
		"t":              token,
	})
	res, err = c.session.Request(ctx, c.endpoints.Login)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make login request")
		return err
	}

	span.SetAttributes(
		attribute.Int("status", res.StatusCode),
		attribute.String("location", res.Header.Get("Location")),
	)
	if !c.isHomeRedirect(res) {
		span.SetStatus(codes.Error, ErrLoginFailed.Error())
		return ErrLoginFailed
	}

	c.loggedIn = true
	return nil
}
