// Package main imports the UAE tariff PDF into the store. The PDF is converted
// with pdftotext unless -text names an already extracted text file.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mmourani/hscode-scraper/internal/cli"
	"github.com/mmourani/hscode-scraper/internal/importer"
)

func main() {
	app := cli.Start("import-pdf-schedule")
	defer app.Close()
	cfg := app.Config

	pdfPath := flag.String("pdf", cfg.UAEPDFPath, "tariff PDF")
	textPath := flag.String("text", "", "pre-extracted text of the PDF (skips pdftotext)")
	iso := flag.String("country", "AE", "ISO code of the schedule's country")
	flag.Parse()

	repos, _ := app.Store()
	im := importer.New(repos, cfg.CountryNames, app.Logger)
	country := importer.Country{ISOCode: *iso}

	var (
		res *importer.Result
		err error
	)
	if *textPath != "" {
		data, readErr := os.ReadFile(*textPath)
		if readErr != nil {
			app.Fatal("failed to read extracted text", readErr)
		}
		res, err = im.ImportPDFText(app.Ctx, country, string(data), *textPath, importer.HashBytes(data))
	} else {
		res, err = im.ImportPDF(app.Ctx, country, *pdfPath, cfg.PDFToTextPath)
	}
	if err != nil {
		app.Fatal("PDF import failed", err)
	}

	fmt.Printf("Imported %d HS codes for %s\n", res.Imported, res.Country.Name)
}
