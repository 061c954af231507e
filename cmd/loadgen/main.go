// loadgen fires concurrent checkout calls at a running server and tallies
// the outcomes. With more requested stock than available it demonstrates
// that the aggregate of successful decrements never exceeds the initial
// stock: the rest fail with insufficient-stock or conflict responses.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"
)

type productResponse struct {
	ID    string `json:"id"`
	Stock int    `json:"stock"`
}

func main() {
	var (
		base    = flag.String("base", "http://localhost:8080", "server base URL")
		stock   = flag.Int("stock", 100, "initial stock of the generated product")
		clients = flag.Int("clients", 150, "number of concurrent checkout calls")
		qty     = flag.Int("qty", 1, "quantity per checkout line")
	)
	flag.Parse()

	client := resty.New().SetBaseURL(*base)

	var created productResponse
	resp, err := client.R().
		SetBody(map[string]any{
			"name":     "Resistance Band (loadgen)",
			"category": "bands",
			"price":    "19.90",
			"stock":    *stock,
		}).
		SetResult(&created).
		Post("/api/products")
	if err != nil {
		log.Fatalf("create product: %v", err)
	}
	if resp.StatusCode() != 201 {
		log.Fatalf("create product: unexpected status %d: %s", resp.StatusCode(), resp.String())
	}
	log.Printf("🚀 created product %s with stock %d, firing %d checkouts of qty %d",
		created.ID, *stock, *clients, *qty)

	var success, insufficient, conflict, other atomic.Int64

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < *clients; i++ {
		g.Go(func() error {
			resp, err := client.R().
				SetContext(ctx).
				SetBody(map[string]any{
					"lines": []map[string]any{
						{"product_id": created.ID, "quantity": *qty},
					},
				}).
				Post("/api/checkout")
			if err != nil {
				return err
			}
			switch resp.StatusCode() {
			case 200:
				success.Add(1)
			case 400:
				insufficient.Add(1)
			case 409:
				conflict.Add(1)
			default:
				other.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("checkout wave failed: %v", err)
	}

	var final productResponse
	if _, err := client.R().SetResult(&final).Get("/api/products/" + created.ID); err != nil {
		log.Fatalf("read back product: %v", err)
	}

	fmt.Printf("success=%d insufficient=%d conflict=%d other=%d remaining_stock=%d\n",
		success.Load(), insufficient.Load(), conflict.Load(), other.Load(), final.Stock)

	reserved := int(success.Load()) * *qty
	if reserved+final.Stock == *stock && final.Stock >= 0 {
		fmt.Println("✅ no oversell: reserved + remaining == initial stock")
	} else {
		fmt.Printf("❌ stock accounting broken: reserved=%d remaining=%d initial=%d\n",
			reserved, final.Stock, *stock)
	}
}
