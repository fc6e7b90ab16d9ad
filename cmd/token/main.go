// Command token mints a bearer token for local testing.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-product-search/internal/auth"
	"github.com/ariefcatur/go-product-search/internal/config"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	userID := flag.Int64("user", 0, "user id to put in the token")
	ttl := flag.Duration("ttl", cfg.TokenTTL, "token lifetime")
	flag.Parse()

	if cfg.JWTSecret == "" || *userID <= 0 {
		fmt.Fprintln(os.Stderr, "usage: JWT_SECRET=... token -user <id> [-ttl 1h]")
		os.Exit(2)
	}
	raw, err := auth.Issuer{Secret: []byte(cfg.JWTSecret), Issuer: cfg.JWTIssuer, TTL: *ttl, Now: time.Now}.Issue(*userID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(raw)
}
