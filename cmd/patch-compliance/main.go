// Package main writes the built-in compliance notes into extra_info.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mmourani/hscode-scraper/internal/cli"
	"github.com/mmourani/hscode-scraper/internal/compliance"
)

func main() {
	app := cli.Start("patch-compliance")
	defer app.Close()

	code := flag.String("code", "85269200", "HS code whose built-in patch is applied")
	flag.Parse()

	patch, ok := compliance.Builtin()[*code]
	if !ok {
		fmt.Fprintf(os.Stderr, "No built-in compliance patch for %s.\n", *code)
		app.Close()
		os.Exit(1)
	}

	repos, _ := app.Store()
	res, err := compliance.Apply(app.Ctx, repos, patch, app.Logger)
	if err != nil {
		app.Fatal("compliance patch failed", err)
	}

	isos := make([]string, 0, len(res.Updated))
	for iso := range res.Updated {
		isos = append(isos, iso)
	}
	sort.Strings(isos)
	fmt.Printf("Compliance info updated for %s (%s).\n", res.Code, strings.Join(countryLabels(isos), " and "))
}

func countryLabels(isos []string) []string {
	out := make([]string, len(isos))
	for i, iso := range isos {
		if iso == "AE" {
			out[i] = "UAE"
		} else {
			out[i] = iso
		}
	}
	return out
}
