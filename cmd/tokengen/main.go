// Package main provides a CLI tool for minting wallet owner tokens for local
// testing. Tokens are signed with the key the server would load from the
// same environment, so JWT_SIGNING_KEY and .env apply here too.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"identrust/internal/platform/config"
	"identrust/internal/user/token"
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Type      string            `json:"type"`
	ExpiresIn string            `json:"expires_in"`
	Claims    map[string]any    `json:"claims,omitempty"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	issueCmd := flag.NewFlagSet("issue", flag.ExitOnError)
	issueEmail := issueCmd.String("email", "demo@identrust.local", "Wallet owner e-mail (token subject)")
	issueRole := issueCmd.String("role", "user", "Role claim")
	issueCreated := issueCmd.String("account-created", "", "Account creation time (RFC 3339). Defaults to now.")
	issueTTL := issueCmd.Duration("ttl", 0, "Token time-to-live. Defaults to TOKEN_TTL.")
	issueJSON := issueCmd.Bool("json", false, "Output as JSON")

	inspectCmd := flag.NewFlagSet("inspect", flag.ExitOnError)
	inspectToken := inspectCmd.String("token", "", "Token to validate and decode")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "issue":
		_ = issueCmd.Parse(os.Args[2:])
		created, err := parseCreated(*issueCreated)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		issue(cfg, *issueEmail, *issueRole, created, *issueTTL, *issueJSON)
	case "inspect":
		_ = inspectCmd.Parse(os.Args[2:])
		inspect(cfg, *inspectToken)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tokengen - mint bearer tokens for the identrust wallet API

Usage:
  tokengen <command> [flags]

Commands:
  issue     Sign a token for a wallet owner
  inspect   Validate a token and print its claims

Issue flags:
  -email            Wallet owner e-mail (default: demo@identrust.local)
  -role             Role claim (default: user)
  -account-created  Account creation time, RFC 3339 (default: now)
  -ttl              Token time-to-live (default: TOKEN_TTL)
  -json             Output as JSON

Inspect flags:
  -token            Token to validate

Examples:
  tokengen issue -email ada@example.com
  tokengen issue -email ada@example.com -ttl 1h -json
  tokengen inspect -token eyJhbGciOi...

  curl -H "Authorization: Bearer $(tokengen issue -email ada@example.com)" \
       http://localhost:8080/dashboard`)
}

func parseCreated(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("account-created must be RFC 3339: %w", err)
	}
	return t, nil
}

func issue(cfg config.Server, email, role string, created time.Time, ttl time.Duration, jsonOutput bool) {
	if ttl <= 0 {
		ttl = cfg.Auth.TokenTTL
	}
	svc := token.NewService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience, ttl)
	tok, err := svc.Generate(context.Background(), email, role, created)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if !jsonOutput {
		fmt.Println(tok)
		return
	}

	claims, err := svc.Parse(tok)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding token: %v\n", err)
		os.Exit(1)
	}
	printJSON(tokenOutput{
		Token:     tok,
		Type:      "Bearer",
		ExpiresIn: ttl.String(),
		Claims:    claimMap(claims),
		Usage: map[string]string{
			"header": "Authorization: Bearer " + tok,
			"curl":   fmt.Sprintf("curl -H 'Authorization: Bearer %s' http://localhost%s/me", tok, cfg.Addr),
		},
	})
}

func inspect(cfg config.Server, tok string) {
	if tok == "" {
		fmt.Fprintln(os.Stderr, "Error: -token is required")
		os.Exit(1)
	}
	svc := token.NewService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.TokenTTL)
	claims, err := svc.Parse(tok)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid token: %v\n", err)
		os.Exit(1)
	}
	printJSON(claimMap(claims))
}

func claimMap(c *token.Claims) map[string]any {
	out := map[string]any{
		"email": c.Email,
		"role":  c.Role,
		"iss":   c.Issuer,
		"aud":   c.Audience,
		"jti":   c.ID,
	}
	if c.AccountCreated != 0 {
		out["account_created"] = time.Unix(c.AccountCreated, 0).UTC().Format(time.RFC3339)
	}
	if c.IssuedAt != nil {
		out["iat"] = c.IssuedAt.UTC().Format(time.RFC3339)
	}
	if c.ExpiresAt != nil {
		out["exp"] = c.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return out
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding output: %v\n", err)
		os.Exit(1)
	}
}
