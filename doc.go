// Package instagram provides a Go client for the Instagram v1 REST API and its
// OAuth2 authorization-code flow.
//
// # Overview
//
// Every API method maps to one resource path, parameter set and HTTP verb.
// Requests carry the access token and client ID, optionally signed with the
// client secret, and responses are decoded into typed results or typed errors.
//
// # Features
//
//   - OAuth2 login URL generation and code exchange
//   - Enforced signed requests (HMAC-SHA256 sig parameter)
//   - Typed results with per-call status, including the remaining rate limit
//   - Cursor pagination and generic iterators over list endpoints
//   - Structured logging via log/slog and optional Prometheus metrics
//
// # Quick Start
//
// Public data with an access token obtained elsewhere:
//
//	client, err := instagram.NewPublicClient("your-client-id", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	client.SetAccessToken(token)
//
//	user, err := client.GetUser(ctx, "") // the authenticated user
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(user.Data.Username, user.Status.RateLimitRemaining)
//
// # Authentication
//
// For the login flow, create an AuthClient with the secret and callback:
//
//	client, err := instagram.NewClient(instagram.Credentials{
//		APIKey:      "your-client-id",
//		APISecret:   "your-client-secret",
//		APICallback: "https://example.com/callback",
//	}, nil)
//
//	loginURL, err := client.LoginURL("basic", "likes")
//	// redirect the user to loginURL; Instagram calls back with ?code=...
//
//	token, err := client.ExchangeCode(ctx, code)
//	client.SetOAuthToken(token)
//
// Calling an authenticated method before a token is set fails with
// *errors.AuthenticationRequiredError without any network traffic.
//
// # Pagination
//
// List results carry a Pagination object. Paginate and NextPage follow it:
//
//	page, err := client.GetUserFollower(ctx, 50)
//	for err == nil && page != nil {
//		for _, u := range page.Data {
//			fmt.Println(u.Username)
//		}
//		page, err = instagram.NextPage[[]types.User](ctx, client.Client, page.Pagination, 50)
//	}
//
// Or with an iterator:
//
//	users, err := client.NewFollowerIterator(ctx, 50).Collect(0)
//
// # Error Handling
//
// All errors are defined in pkg/errors and can be matched with errors.As:
//
//	var apiErr *errors.APIError
//	if errors.As(err, &apiErr) {
//		log.Printf("code %d: %s", apiErr.Code, apiErr.ErrorMessage)
//	}
//
// # Concurrency
//
// Methods may be called from several goroutines. Each call returns its own
// status. The RateLimit, Code, ErrorMessage and ErrorType accessors report the
// most recent call only, so they are reliable only when calls are serialized.
package instagram
