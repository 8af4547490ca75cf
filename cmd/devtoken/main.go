// Command devtoken mints an HS256 access token for local testing.  The API
// trusts tokens from an external identity provider; this tool signs one
// with JWT_SECRET so the endpoints can be exercised without it.
//
//	devtoken -sub 6f1c... -email me@example.com -role ADMIN
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/iliyamo/cinema-booking-engine/internal/config"
	"github.com/iliyamo/cinema-booking-engine/internal/domain"
	"github.com/iliyamo/cinema-booking-engine/internal/utils"
)

func main() {
	_ = godotenv.Load()

	sub := flag.String("sub", "", "user id (UUID); random when empty")
	email := flag.String("email", "dev@cinema.local", "email claim")
	role := flag.String("role", domain.RoleUser, "role claim: USER or ADMIN")
	ttl := flag.Duration("ttl", config.AccessTokenTTL(), "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is not set")
		os.Exit(1)
	}
	id := uuid.New()
	if *sub != "" {
		parsed, err := uuid.Parse(*sub)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -sub: %v\n", err)
			os.Exit(1)
		}
		id = parsed
	}
	tok, err := utils.NewAccessToken(secret, id, *email, *role, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("sub=%s exp=%s\n%s\n", id, tok.Exp.Format(time.RFC3339), tok.Token)
}
