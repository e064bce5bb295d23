// Command devtoken prints a signed bearer token for an address, for local
// development against a server sharing the same JWT_SIGNING_KEY.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	jwttoken "crowdsale/internal/jwt_token"
	"crowdsale/internal/platform/config"
	"crowdsale/pkg/domain"
)

func main() {
	var (
		address = flag.String("address", "", "caller address (defaults to the configured controller)")
		ttl     = flag.Duration("ttl", time.Hour, "token lifetime")
	)
	flag.Parse()

	if err := run(*address, *ttl); err != nil {
		fmt.Fprintln(os.Stderr, "devtoken:", err)
		os.Exit(1)
	}
}

func run(rawAddress string, ttl time.Duration) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	addr := cfg.Sale.Controller
	if rawAddress != "" {
		if addr, err = domain.ParseAddress(rawAddress); err != nil {
			return err
		}
	}

	token, err := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTIssuer).GenerateAccessToken(addr, ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
