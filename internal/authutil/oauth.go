// Package authutil provides the OAuth2 plumbing shared by every
// OAuth-based platform adapter (Strava, OneDrive, Intervals.icu). Adapters
// that authenticate by cookie or username/password (Garmin, Garmin CN,
// IGPSport, MyWhoosh) do not use this package; that auth lives entirely in
// the adapter implementation, which the sync core never inspects.
package authutil

import (
	"fmt"

	"golang.org/x/oauth2"
)

// Endpoint describes the OAuth2 endpoint and scopes for one platform.
type Endpoint struct {
	AuthURL  string
	TokenURL string
	Scopes   []string
}

// KnownEndpoints are the published OAuth2 endpoints for platforms the core
// ships reference adapters for. Adapters for other OAuth platforms can
// build their own authutil.Config without registering here.
var KnownEndpoints = map[string]Endpoint{
	"strava": {
		AuthURL:  "https://www.strava.com/oauth/authorize",
		TokenURL: "https://www.strava.com/oauth/token",
		Scopes:   []string{"read,activity:read_all,activity:write"},
	},
	"onedrive": {
		AuthURL:  "https://login.microsoftonline.com/common/oauth2/v2.0/authorize",
		TokenURL: "https://login.microsoftonline.com/common/oauth2/v2.0/token",
		Scopes:   []string{"Files.ReadWrite", "offline_access"},
	},
	"intervals_icu": {
		AuthURL:  "https://intervals.icu/oauth/authorize",
		TokenURL: "https://intervals.icu/api/oauth/token",
		Scopes:   []string{"ACTIVITY:WRITE"},
	},
}

// Config holds the OAuth client credentials for one platform.
type Config struct {
	Platform     string
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "http://localhost:8089/callback"
}

// NewOAuthConfig builds an oauth2.Config for a known platform.
func NewOAuthConfig(cfg Config) (*oauth2.Config, error) {
	ep, ok := KnownEndpoints[cfg.Platform]
	if !ok {
		return nil, fmt.Errorf("authutil: no known OAuth endpoint for platform %q", cfg.Platform)
	}
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  ep.AuthURL,
			TokenURL: ep.TokenURL,
		},
		RedirectURL: cfg.RedirectURL,
		Scopes:      ep.Scopes,
	}, nil
}

// AuthResult contains the token and platform-reported account identifier
// from a successful interactive authorization.
type AuthResult struct {
	Token     *oauth2.Token
	AccountID string
}

// ExtraNestedID extracts a numeric "id" field nested under the given extra
// key, matching Strava's token.Extra("athlete") = {"id": float64, ...}.
// Platforms that don't echo account info in the token return "".
func ExtraNestedID(token *oauth2.Token, field string) string {
	nested, ok := token.Extra(field).(map[string]interface{})
	if !ok {
		return ""
	}
	id, ok := nested["id"].(float64)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d", int64(id))
}
