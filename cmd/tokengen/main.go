package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"artkit-backend/pkg/utils"
)

// tokengen mints a JWT for local testing against the protected
// favorites endpoints.
func main() {
	userID := flag.String("user", "", "user ID to embed in the token (required)")
	email := flag.String("email", "", "email claim")
	role := flag.String("role", "user", "role claim (user or admin)")
	secret := flag.String("secret", "", "HMAC signing secret (or set JWT_SECRET env var)")
	expiry := flag.Duration("exp", 24*time.Hour, "token expiry duration (e.g. 1h, 72h)")
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "error: -user flag is required")
		flag.Usage()
		os.Exit(1)
	}

	signingSecret := *secret
	if signingSecret == "" {
		signingSecret = os.Getenv("JWT_SECRET")
	}
	if signingSecret == "" {
		fmt.Fprintln(os.Stderr, "error: provide -secret or set JWT_SECRET")
		os.Exit(1)
	}

	utils.SetSecret(signingSecret)
	token, err := utils.GenerateJWT(*userID, *email, *role, *expiry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error signing token: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Token for user %s (expires %s):\n", *userID, time.Now().Add(*expiry).Format(time.RFC3339))
	fmt.Println(token)
}
