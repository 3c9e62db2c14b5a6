// server/cmd/token/main.go
//
// token mints a bearer token for local testing:
//
//	go run ./cmd/token --sub user-123 --email user@example.com
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"shipment-tracking-api-server/config"
	"shipment-tracking-api-server/internal/auth"
	"shipment-tracking-api-server/internal/logger"
	"shipment-tracking-api-server/internal/models"
)

func main() {
	configDir := pflag.String("config", "./config", "directory holding config.yaml")
	subject := pflag.StringP("sub", "s", "", "caller id to put in the token (required)")
	email := pflag.StringP("email", "e", "", "caller email")
	name := pflag.StringP("name", "n", "", "caller display name")
	ttl := pflag.Duration("ttl", 0, "token lifetime, defaults to jwt.expiration")
	pflag.Parse()

	if *subject == "" {
		pflag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		logger.Fatal(err)
	}
	if *ttl > 0 {
		cfg.JWT.Expiration = ttl.String()
	}

	token, err := auth.NewTokenManager(cfg.JWT).Generate(models.Caller{ID: *subject, Email: *email, Name: *name})
	if err != nil {
		logger.Fatal(err)
	}
	fmt.Println(token)
}
