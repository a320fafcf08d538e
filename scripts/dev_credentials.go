// Command dev_credentials mints development credentials: bearer tokens for
// the identity provider contract and bcrypt hashes for share passwords.
//
//	go run scripts/dev_credentials.go token <user-id> <email> [name]
//	go run scripts/dev_credentials.go hash <password>
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/your-org/giftlist-backend/internal/config"
	"github.com/your-org/giftlist-backend/internal/pkg/auth"
)

func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: go run scripts/dev_credentials.go token <user-id> <email> [name] | hash <password>")
	}

	_ = godotenv.Load()
	cfg := config.FromEnv()

	switch os.Args[1] {
	case "token":
		mintToken(cfg, os.Args[2:])
	case "hash":
		hashPassword(cfg, os.Args[2])
	default:
		log.Fatalf("Unknown command %q", os.Args[1])
	}
}

func mintToken(cfg *config.Config, args []string) {
	if len(args) < 2 {
		log.Fatal("token needs <user-id> <email>")
	}
	userID, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil || userID == 0 {
		log.Fatalf("Invalid user id %q", args[0])
	}
	name := ""
	if len(args) > 2 {
		name = args[2]
	}

	token, err := auth.NewJWTManager(cfg).GenerateAccessToken(uint(userID), args[1], name)
	if err != nil {
		log.Fatal("Error signing token:", err)
	}

	fmt.Printf("Authorization: Bearer %s\n", token)
	fmt.Printf("Expires in: %s\n", cfg.JWT.AccessTokenExpiry)
}

func hashPassword(cfg *config.Config, password string) {
	manager := auth.NewPasswordManager(cfg.Security.BcryptCost)
	if err := manager.ValidatePassword(password); err != nil {
		log.Fatal(err)
	}

	hash, err := manager.HashPassword(password)
	if err != nil {
		log.Fatal("Error generating hash:", err)
	}

	fmt.Printf("Password: %s\n", password)
	fmt.Printf("Hash: %s\n", hash)

	if err := manager.VerifyPassword(password, hash); err != nil {
		log.Fatal("Hash verification failed:", err)
	}

	fmt.Println("Hash verified successfully")
}
