// Command token mints a signed operator token for calling the write endpoints.
package main

import (
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"ratesvc/internal/config"
	"ratesvc/internal/models"
	"ratesvc/internal/utils"
)

func main() {
	envFileFlag := flag.String("env-file", ".env", "dotenv file to load before reading the environment")
	addressFlag := flag.String("address", "", "ledger address the token acts as")
	roleFlag := flag.String("role", models.RoleOperator, "role: admin, operator, system or any read-only role")
	ttlFlag := flag.Duration("ttl", 0, "token lifetime (defaults to JWT_TOKEN_TTL)")
	flag.Parse()

	config.LoadEnv(*envFileFlag)

	ttl := *ttlFlag
	if ttl == 0 {
		ttl = config.GetDurationEnv("JWT_TOKEN_TTL", 24*time.Hour)
	}

	token, err := utils.GenerateToken(utils.TokenOptions{
		Secret:  config.GetEnv("JWT_SECRET", ""),
		Issuer:  config.GetEnv("JWT_ISSUER", "rates-api"),
		TTL:     ttl,
		Address: *addressFlag,
		Role:    *roleFlag,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
