// Command tokengen issues bearer tokens for local use and operations.
//
//	TOKEN_AUTH_SECRET=... tokengen -user 42 -type admin -ttl 24h
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/yakoovad/groupmatch/internal/auth"
)

func main() {
	userID := flag.String("user", "", "user id placed in the token subject")
	tokenType := flag.String("type", string(auth.TokenTypeUser), "token type: user or admin")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	tokens, err := auth.NewTokenManager(os.Getenv("TOKEN_AUTH_SECRET"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "TOKEN_AUTH_SECRET:", err)
		os.Exit(1)
	}

	switch t := auth.TokenType(*tokenType); t {
	case auth.TokenTypeUser, auth.TokenTypeAdmin:
		token, err := tokens.GenerateToken(t, *userID, *ttl)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(token)
	default:
		fmt.Fprintf(os.Stderr, "unknown token type %q\n", *tokenType)
		os.Exit(2)
	}
}
