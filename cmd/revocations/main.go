// Command revocations inspects and maintains the token blocklist.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/adminpanel/internal/config"
	"github.com/Skotchmaster/adminpanel/internal/revocation"
)

func main() {
	flush := flag.Bool("flush", false, "remove every revoked token id")
	check := flag.String("check", "", "report whether a token id is revoked")
	revoke := flag.String("revoke", "", "revoke a token id")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()
	store := revocation.NewRedisStore(rdb, cfg.AccessTTL)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch {
	case *flush:
		if err := store.Clear(ctx); err != nil {
			log.Fatalf("flush: %v", err)
		}
		fmt.Println("blocklist cleared")
	case *revoke != "":
		if err := store.Revoke(ctx, *revoke); err != nil {
			log.Fatalf("revoke: %v", err)
		}
		fmt.Printf("%s revoked for %s\n", *revoke, cfg.AccessTTL)
	case *check != "":
		revoked, err := store.IsRevoked(ctx, *check)
		if err != nil {
			log.Fatalf("check: %v", err)
		}
		fmt.Printf("%s revoked=%t\n", *check, revoked)
	default:
		flag.Usage()
		os.Exit(2)
	}
}
