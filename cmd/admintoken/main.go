// Command admintoken prints a signed admin token for the content endpoints.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/NeuralTrust/TrustBook/pkg/config"
	"github.com/NeuralTrust/TrustBook/pkg/infra/jwt"
	"github.com/joho/godotenv"
)

func main() {
	subject := flag.String("subject", "admin", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime, 0 for no expiry")
	configPath := flag.String("config", "./config", "config directory")
	flag.Parse()

	_ = godotenv.Load()
	if err := config.Load(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	token, err := jwt.NewJwtManager(config.GetConfig().Server.SecretKey).CreateToken(*subject, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
