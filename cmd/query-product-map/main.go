// Package main queries global_product_map.json and joins entries with the store.
//
// Without flags it prints the three standard examples: products whose keywords
// contain "drone", the full record of 88021100, and the "radio" category.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/mmourani/hscode-scraper/internal/cli"
	"github.com/mmourani/hscode-scraper/internal/productmap"
)

func main() {
	app := cli.Start("query-product-map")
	defer app.Close()
	cfg := app.Config

	path := flag.String("map", cfg.ProductMapPath, "product map file")
	keyword := flag.String("keyword", "", "list entries whose keywords contain this word")
	code := flag.String("code", "", "show one code with its store rows")
	typ := flag.String("type", "", "list entries of this type")
	limit := flag.Int("limit", 5, "maximum entries per listing (0 for all)")
	flag.Parse()

	m, err := productmap.Load(*path)
	if errors.Is(err, fs.ErrNotExist) {
		app.Fatal("product map not found; run generate-product-map first", err)
	}
	if err != nil {
		app.Fatal("failed to load product map", err)
	}

	if *keyword == "" && *code == "" && *typ == "" {
		*keyword, *code, *typ = "drone", "88021100", "radio"
	}

	if *keyword != "" {
		fmt.Printf("--- All products/categories containing '%s' ---\n", *keyword)
		productmap.WriteMatches(os.Stdout, productmap.ByKeyword(m, *keyword), *limit, true)
	}

	if *code != "" {
		fmt.Printf("--- All info for HS code %s ---\n", *code)
		match, ok := productmap.ByCode(m, *code)
		if !ok {
			fmt.Printf("HS code %s not found in product map.\n", *code)
		} else {
			repos, _ := app.Store()
			details, err := productmap.NewQuerier(repos).Details(app.Ctx, match.Entry)
			if err != nil {
				app.Fatal("failed to look up store rows", err)
			}
			productmap.WriteDetails(os.Stdout, match, details)
		}
	}

	if *typ != "" {
		fmt.Printf("--- All products in the '%s' category ---\n", *typ)
		productmap.WriteMatches(os.Stdout, productmap.ByType(m, *typ), *limit, false)
	}
}
