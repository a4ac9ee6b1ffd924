package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	instagram "github.com/jamesprial/go-instagram-api-wrapper"
	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-instagram-api-wrapper/pkg/types"
)

func main() {
	// Get credentials from environment variables
	clientID := os.Getenv("INSTAGRAM_CLIENT_ID")
	clientSecret := os.Getenv("INSTAGRAM_CLIENT_SECRET")
	callback := os.Getenv("INSTAGRAM_CALLBACK") // e.g. http://localhost:8765/callback

	if clientID == "" || clientSecret == "" || callback == "" {
		log.Fatal("INSTAGRAM_CLIENT_ID, INSTAGRAM_CLIENT_SECRET and INSTAGRAM_CALLBACK environment variables are required")
	}

	// Route structured logs to stdout; adjust the level as needed.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// Create the client
	client, err := instagram.NewClient(instagram.Credentials{
		APIKey:      clientID,
		APISecret:   clientSecret,
		APICallback: callback,
	}, &instagram.Config{
		UserAgent: "example-app/1.0",
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	// A fresh state per login ties the callback to this run
	state := uuid.NewString()
	loginURL, err := client.LoginURLWithState(state, "basic", "public_content")
	if err != nil {
		log.Fatalf("Failed to build login URL: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	fmt.Println("Open this URL in your browser to log in:")
	fmt.Println(loginURL)

	// Wait for Instagram to redirect the browser back with a code
	code, err := waitForCode(ctx, callback, state)
	if err != nil {
		log.Fatalf("Login failed: %v", err)
	}

	token, err := client.ExchangeCode(ctx, code)
	if err != nil {
		reportError(err)
		os.Exit(1)
	}
	client.SetOAuthToken(token)
	if token.User != nil {
		fmt.Printf("Logged in as %s\n", token.User.Username)
	}

	// Profile of the authenticated user
	user, err := client.GetUser(ctx, "")
	if err != nil {
		reportError(err)
		os.Exit(1)
	}
	fmt.Printf("\n%s (%s)\n", user.Data.FullName, user.Data.Username)
	if counts := user.Data.Counts; counts != nil {
		fmt.Printf("Posts: %d  Followers: %d  Following: %d\n", counts.Media, counts.FollowedBy, counts.Follows)
	}

	// Recent media, a few pages at a time
	fmt.Println("\nRecent media:")
	page, err := client.GetUserMedia(ctx, "", 10)
	for n := 1; err == nil && page != nil && n <= 3; n++ {
		fmt.Printf("  Page %d: %d items\n", n, len(page.Data))
		for _, media := range page.Data {
			fmt.Printf("    - %s (%d likes)\n", media.Link, media.Likes.Count)
		}
		page, err = instagram.NextPage[[]types.Media](ctx, client.Client, page.Pagination, 10)
	}
	if err != nil {
		reportError(err)
	}

	if remaining, known := client.RateLimit(); known {
		fmt.Printf("\nCalls left this hour: %d\n", remaining)
	}
}

// waitForCode serves the callback URL until Instagram redirects back to it with
// the expected state, returning the code or the error the user was sent back with.
func waitForCode(ctx context.Context, callback, state string) (string, error) {
	u, err := url.Parse(callback)
	if err != nil {
		return "", fmt.Errorf("invalid callback: %w", err)
	}

	listener, err := net.Listen("tcp", u.Host)
	if err != nil {
		return "", fmt.Errorf("cannot listen on %s: %w", u.Host, err)
	}

	type result struct {
		code string
		err  error
	}
	results := make(chan result, 1)
	deliver := func(res result) {
		select {
		case results <- res:
		default: // already answered
		}
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	router := mux.NewRouter()
	router.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("state") != state {
			http.Error(w, "unexpected state", http.StatusBadRequest)
			return
		}
		if reason := query.Get("error_reason"); reason != "" {
			fmt.Fprintln(w, "Login was not completed. You can close this window.")
			deliver(result{err: fmt.Errorf("%s: %s", reason, query.Get("error_description"))})
			return
		}
		fmt.Fprintln(w, "Logged in. You can close this window.")
		deliver(result{code: query.Get("code")})
	}).Methods(http.MethodGet)

	server := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	go server.Serve(listener)
	defer server.Close()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-results:
		return res.code, res.err
	}
}

// reportError prints the details carried by the client's typed errors
func reportError(err error) {
	var apiErr *pkgerrs.APIError
	var transportErr *pkgerrs.TransportError
	var malformedErr *pkgerrs.MalformedResponseError

	switch {
	case errors.As(err, &apiErr):
		fmt.Printf("API error %d (%s): %s\n", apiErr.Code, apiErr.ErrorType, apiErr.ErrorMessage)
	case errors.As(err, &transportErr):
		fmt.Printf("Network error: %v\n", transportErr)
	case errors.As(err, &malformedErr):
		fmt.Printf("Unexpected response (HTTP %d): %v\n", malformedErr.HTTPStatus, malformedErr)
	default:
		fmt.Printf("Error: %v\n", err)
	}
}
