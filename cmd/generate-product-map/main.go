// Package main generates global_product_map.json from the store and, when
// object storage is configured, publishes it.
package main

import (
	"flag"
	"fmt"

	"github.com/mmourani/hscode-scraper/internal/cli"
	"github.com/mmourani/hscode-scraper/internal/productmap"
	"github.com/mmourani/hscode-scraper/internal/service"
)

func main() {
	app := cli.Start("generate-product-map")
	defer app.Close()
	cfg := app.Config

	output := flag.String("output", cfg.ProductMapPath, "product map file to write")
	publish := flag.Bool("publish", true, "upload the map to object storage when configured")
	flag.Parse()

	repos, _ := app.Store()

	m, data, err := productmap.NewGenerator(repos, app.Logger).Generate(app.Ctx, *output)
	if err != nil {
		app.Fatal("failed to generate product map", err)
	}

	if *publish {
		storage, err := service.NewStorageService(cfg, app.Logger)
		if err != nil {
			app.Fatal("failed to initialize storage", err)
		}
		key, err := storage.PublishProductMap(app.Ctx, data)
		if err != nil {
			app.Fatal("failed to publish product map", err)
		}
		if key != "" {
			app.Logger.Info("product map published", "bucket", storage.Bucket(), "key", key)
		}
	}

	fmt.Printf("Global product map generated with %d unique HS codes.\n", len(m))
}
